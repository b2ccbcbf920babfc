// Package itemcodec encodes item templates and block locations into the
// text blobs stored in tags. Blobs are base64 of a versioned JSON document.
package itemcodec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"realcoins/internal/sim/world/kernel/model"
)

const Version = 1

var (
	ErrUnsupportedVersion = errors.New("itemcodec: unsupported version")
	ErrEmptyItem          = errors.New("itemcodec: empty item")
	ErrMalformed          = errors.New("itemcodec: malformed blob")
)

type itemV1 struct {
	V        int               `json:"v"`
	Material string            `json:"material"`
	Amount   int               `json:"amount"`
	Name     string            `json:"name,omitempty"`
	Texture  string            `json:"texture,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

type locationV1 struct {
	V     int    `json:"v"`
	World string `json:"world"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
}

func EncodeItem(s *model.ItemStack) (string, error) {
	if s.IsEmpty() {
		return "", ErrEmptyItem
	}
	b, err := json.Marshal(itemV1{
		V:        Version,
		Material: s.Material,
		Amount:   s.Amount,
		Name:     s.DisplayName,
		Texture:  s.Texture,
		Tags:     maps.Clone(s.Tags),
	})
	if err != nil {
		return "", fmt.Errorf("itemcodec: encode item: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeItem(blob string) (*model.ItemStack, error) {
	var doc itemV1
	if err := decode(blob, &doc); err != nil {
		return nil, err
	}
	if doc.Material == "" || doc.Amount <= 0 {
		return nil, ErrEmptyItem
	}
	return &model.ItemStack{
		Material:    doc.Material,
		Amount:      doc.Amount,
		DisplayName: doc.Name,
		Texture:     doc.Texture,
		Tags:        doc.Tags,
	}, nil
}

func EncodeLocation(l model.Location) (string, error) {
	if l.World == "" {
		return "", fmt.Errorf("%w: location without world", ErrMalformed)
	}
	b, err := json.Marshal(locationV1{V: Version, World: l.World, X: l.Pos.X, Y: l.Pos.Y, Z: l.Pos.Z})
	if err != nil {
		return "", fmt.Errorf("itemcodec: encode location: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeLocation(blob string) (model.Location, error) {
	var doc locationV1
	if err := decode(blob, &doc); err != nil {
		return model.Location{}, err
	}
	if doc.World == "" {
		return model.Location{}, fmt.Errorf("%w: location without world", ErrMalformed)
	}
	return model.Location{World: doc.World, Pos: model.Vec3i{X: doc.X, Y: doc.Y, Z: doc.Z}}, nil
}

// decode checks the version before the payload so that documents written by
// a newer schema are reported as such rather than as half-parsed values.
func decode(blob string, dst any) error {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var head struct {
		V int `json:"v"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if head.V != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, head.V)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
