package action

import (
	"reflect"
	"testing"

	"github.com/pleimann/pushbutton/internal/config"
	"github.com/pleimann/pushbutton/internal/gesture"
)

func testConfig() *config.Config {
	return &config.Config{
		Buttons: []config.Button{
			{
				Name:          "btn_a",
				OnClick:       &config.KeyAction{Keys: []string{"ctrl+c"}},
				OnDoubleClick: &config.KeyAction{Keys: []string{"ctrl+z"}},
				OnHold:        &config.KeyAction{Keys: []string{"q", "enter"}},
				OnUp:          &config.KeyAction{},
			},
			{
				Name:   "btn_b",
				OnDown: &config.KeyAction{Keys: []string{"down"}},
			},
		},
	}
}

func TestMapperMap(t *testing.T) {
	mapper := NewMapper(testConfig())

	tests := []struct {
		name    string
		gesture gesture.Gesture
		want    []string
	}{
		{"click a", gesture.Gesture{Type: gesture.Click, Source: "btn_a"}, []string{"ctrl+c"}},
		{"double click a", gesture.Gesture{Type: gesture.DoubleClick, Source: "btn_a"}, []string{"ctrl+z"}},
		{"hold a", gesture.Gesture{Type: gesture.Hold, Source: "btn_a"}, []string{"q", "enter"}},
		{"empty action", gesture.Gesture{Type: gesture.Up, Source: "btn_a"}, nil},
		{"down b", gesture.Gesture{Type: gesture.Down, Source: "btn_b"}, []string{"down"}},
		{"unmapped gesture", gesture.Gesture{Type: gesture.Click, Source: "btn_b"}, nil},
		{"unknown button", gesture.Gesture{Type: gesture.Click, Source: "btn_z"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapper.Map(tt.gesture); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Map(%s) = %v, want %v", tt.gesture, got, tt.want)
			}
		})
	}

	if mapper.Len() != 4 {
		t.Errorf("Len() = %d, want 4", mapper.Len())
	}
}

func TestMapperBound(t *testing.T) {
	mapper := NewMapper(testConfig())

	for _, gt := range []gesture.Type{gesture.Down, gesture.Hold, gesture.Click, gesture.DoubleClick} {
		if !mapper.Bound(gt) {
			t.Errorf("Bound(%s) = false, want true", gt)
		}
	}
	if mapper.Bound(gesture.Up) {
		t.Error("Bound(on_up) = true for an action without keys")
	}
}

func TestMapperReload(t *testing.T) {
	mapper := NewMapper(testConfig())
	click := gesture.Gesture{Type: gesture.Click, Source: "btn_a"}

	mapper.Reload(&config.Config{
		Buttons: []config.Button{{
			Name:    "btn_a",
			OnClick: &config.KeyAction{Keys: []string{"enter"}},
		}},
	})

	if got := mapper.Map(click); !reflect.DeepEqual(got, []string{"enter"}) {
		t.Errorf("Map() after reload = %v, want [enter]", got)
	}
	if got := mapper.Map(gesture.Gesture{Type: gesture.Down, Source: "btn_b"}); got != nil {
		t.Errorf("removed binding still mapped: %v", got)
	}
}

func TestMapperEmptyConfig(t *testing.T) {
	for _, cfg := range []*config.Config{nil, {}} {
		mapper := NewMapper(cfg)
		if got := mapper.Map(gesture.Gesture{Type: gesture.Click, Source: "a"}); got != nil {
			t.Errorf("Map() on empty config = %v, want nil", got)
		}
	}
}
