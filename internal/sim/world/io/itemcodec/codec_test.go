package itemcodec

import (
	"encoding/base64"
	"errors"
	"testing"

	"realcoins/internal/sim/world/kernel/model"
)

func TestItemRoundTrip(t *testing.T) {
	in := &model.ItemStack{Material: "PLAYER_HEAD", Amount: 3, DisplayName: "Coin", Texture: "abc", Tags: map[string]string{"coin": "Coin"}}
	blob, err := EncodeItem(in)
	if err != nil {
		t.Fatalf("EncodeItem: %v", err)
	}
	out, err := DecodeItem(blob)
	if err != nil {
		t.Fatalf("DecodeItem: %v", err)
	}
	if out.Amount != 3 || !out.IsSimilar(in) {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestLocationRoundTrip(t *testing.T) {
	in := model.Location{World: "overworld", Pos: model.Vec3i{X: -4, Y: 70, Z: 12}}
	blob, err := EncodeLocation(in)
	if err != nil {
		t.Fatalf("EncodeLocation: %v", err)
	}
	out, err := DecodeLocation(blob)
	if err != nil {
		t.Fatalf("DecodeLocation: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestDecodeRejectsForeignBlobs(t *testing.T) {
	future := base64.StdEncoding.EncodeToString([]byte(`{"v":2,"world":"w","x":1,"y":2,"z":3}`))
	if _, err := DecodeLocation(future); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("err=%v, want ErrUnsupportedVersion", err)
	}
	if _, err := DecodeLocation("%%%not-base64"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err=%v, want ErrMalformed", err)
	}
	notJSON := base64.StdEncoding.EncodeToString([]byte("rO0ABXNy"))
	if _, err := DecodeItem(notJSON); !errors.Is(err, ErrMalformed) {
		t.Fatalf("err=%v, want ErrMalformed", err)
	}
	if _, err := EncodeItem(nil); !errors.Is(err, ErrEmptyItem) {
		t.Fatalf("err=%v, want ErrEmptyItem", err)
	}
}
