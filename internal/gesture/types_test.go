package gesture

import (
	"errors"
	"testing"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		gt   Type
		want string
	}{
		{Down, "on_down"},
		{Hold, "on_hold"},
		{Up, "on_up"},
		{Click, "on_click"},
		{DoubleClick, "on_double_click"},
		{Type(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.gt.String(); got != tt.want {
				t.Errorf("Type.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeShort(t *testing.T) {
	if got := DoubleClick.Short(); got != "double_click" {
		t.Errorf("DoubleClick.Short() = %q, want double_click", got)
	}
	if got := Hold.Short(); got != "hold" {
		t.Errorf("Hold.Short() = %q, want hold", got)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{input: "on_down", want: Down},
		{input: "hold", want: Hold},
		{input: "on_up", want: Up},
		{input: "click", want: Click},
		{input: "on_double_click", want: DoubleClick},
		{input: "double_press", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDispatchModeString(t *testing.T) {
	if Synchronous.String() != "sync" {
		t.Errorf("Synchronous.String() = %q", Synchronous.String())
	}
	if Asynchronous.String() != "async" {
		t.Errorf("Asynchronous.String() = %q", Asynchronous.String())
	}
}

func TestGestureKey(t *testing.T) {
	tests := []struct {
		name    string
		gesture Gesture
		want    string
	}{
		{
			name:    "click on btn_a",
			gesture: Gesture{Type: Click, Source: "btn_a"},
			want:    "on_click:btn_a",
		},
		{
			name:    "double click on btn_b",
			gesture: Gesture{Type: DoubleClick, Source: "btn_b"},
			want:    "on_double_click:btn_b",
		},
		{
			name:    "hold without source",
			gesture: Gesture{Type: Hold},
			want:    "on_hold:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gesture.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGestureString(t *testing.T) {
	g := Gesture{Type: Up, Source: "btn_a"}
	if s := g.String(); s != "on_up(btn_a)" {
		t.Errorf("String() = %q, want %q", s, "on_up(btn_a)")
	}
}

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := newGestureError(ErrHandler, Click, "btn_a", cause)

	if !errors.Is(err, ErrHandler) {
		t.Error("errors.Is(err, ErrHandler) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if errors.Is(err, ErrSinkDelivery) {
		t.Error("errors.Is(err, ErrSinkDelivery) = true, want false")
	}

	want := "gesture handler failed: btn_a on_click: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	readErr := newError(ErrInputRead, "btn_b", cause)
	if readErr.Error() != "input read failed: btn_b: boom" {
		t.Errorf("Error() = %q", readErr.Error())
	}
}
