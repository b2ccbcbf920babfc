package model

import (
	"maps"
	"strings"
)

// ItemStack is a pile of identical items. Tags carry item-level persistent
// data (coin marker, display marker) and take part in similarity checks.
type ItemStack struct {
	Material    string
	Amount      int
	DisplayName string
	// Texture is the custom head profile for PLAYER_HEAD items.
	Texture string
	Tags    map[string]string
}

func NewItem(material string, amount int) *ItemStack {
	return &ItemStack{Material: material, Amount: amount}
}

func (s *ItemStack) IsEmpty() bool {
	return s == nil || s.Material == "" || s.Material == Air || s.Amount <= 0
}

func (s *ItemStack) Clone() *ItemStack {
	if s == nil {
		return nil
	}
	c := *s
	c.Tags = maps.Clone(s.Tags)
	return &c
}

func (s *ItemStack) MaxStackSize() int {
	if s == nil {
		return DefaultMaxStack
	}
	return MaxStackSize(s.Material)
}

func (s *ItemStack) HasTag(key string) bool {
	if s == nil || s.Tags == nil {
		return false
	}
	_, ok := s.Tags[key]
	return ok
}

func (s *ItemStack) SetTag(key, value string) {
	if s.Tags == nil {
		s.Tags = map[string]string{}
	}
	s.Tags[key] = value
}

// IsSimilar compares everything except the amount.
func (s *ItemStack) IsSimilar(o *ItemStack) bool {
	if s.IsEmpty() || o.IsEmpty() {
		return false
	}
	if s.Material != o.Material || s.DisplayName != o.DisplayName || s.Texture != o.Texture {
		return false
	}
	if len(s.Tags) != len(o.Tags) {
		return false
	}
	for k, v := range s.Tags {
		if ov, ok := o.Tags[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Name is the display name, or the material spelled in lower case.
func (s *ItemStack) Name() string {
	if s == nil {
		return ""
	}
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return strings.ToLower(strings.ReplaceAll(s.Material, "_", " "))
}
