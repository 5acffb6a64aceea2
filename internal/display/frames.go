package display

import (
	"github.com/pleimann/pushbutton/internal/hid"
)

// HID reports are 64 bytes and display reports carry a 10 byte header
const (
	reportSize     = 64
	maxPayloadSize = reportSize - 10
)

// FrameEncoder splits packed frame buffers into display reports
type FrameEncoder struct {
	width  int
	height int
}

func NewFrameEncoder(width, height int) *FrameEncoder {
	return &FrameEncoder{width: width, height: height}
}

func (e *FrameEncoder) EncodeClear() *hid.DisplayFrame {
	return hid.NewClearCommand()
}

// ChunkFrame splits a full packed frame into partial frames that each fit
// in one report. A full frame report would not.
func (e *FrameEncoder) ChunkFrame(data []byte) []*hid.DisplayFrame {
	return e.ChunkRegion(0, 0, e.width, e.height, data)
}

// ChunkRegion splits a packed region at (x, y) into report-sized bands of
// whole rows
func (e *FrameEncoder) ChunkRegion(x, y, width, height int, data []byte) []*hid.DisplayFrame {
	bytesPerRow := (width + 7) / 8
	if bytesPerRow == 0 {
		return nil
	}
	rowsPerChunk := max(maxPayloadSize/bytesPerRow, 1)

	var frames []*hid.DisplayFrame
	for row := 0; row < height; row += rowsPerChunk {
		rows := min(rowsPerChunk, height-row)

		start := min(row*bytesPerRow, len(data))
		end := min((row+rows)*bytesPerRow, len(data))

		frames = append(frames, hid.NewPartialFrame(
			uint16(x), uint16(y+row),
			uint16(width), uint16(rows),
			data[start:end],
		))
	}
	return frames
}
