package protocol

import (
	"encoding/json"
	"os"
	"reflect"
	"testing"
)

func TestIsKnownCode(t *testing.T) {
	for _, c := range append([]string{""}, Codes...) {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NO_RESOURCE") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestResultSchemaListsEveryCode(t *testing.T) {
	b, err := os.ReadFile("../../schemas/result.schema.json")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	var schema struct {
		Properties struct {
			Code struct {
				Enum []string `json:"enum"`
			} `json:"code"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(b, &schema); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if !reflect.DeepEqual(schema.Properties.Code.Enum, Codes) {
		t.Fatalf("schema codes=%v, want %v", schema.Properties.Code.Enum, Codes)
	}
}
