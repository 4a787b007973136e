package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewExtension(t *testing.T) {
	content := json.RawMessage(`{"phoneNumber":"02-000-0000"}`)

	tests := []struct {
		name    string
		typ     ExtensionType
		pc      string
		mobile  string
		content json.RawMessage
		wantErr bool
	}{
		{name: "sublinks with content", typ: ExtSubLinks, content: content},
		{name: "sublinks without content", typ: ExtSubLinks, wantErr: true},
		{name: "phone with channel", typ: ExtPhone, pc: "chn-1"},
		{name: "phone mobile channel only", typ: ExtPhone, mobile: "chn-2"},
		{name: "phone without channel", typ: ExtPhone, wantErr: true},
		{name: "unknown type", typ: ExtensionType("BANNER"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := NewExtension("grp-1", tt.typ, tt.pc, tt.mobile, tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewExtension() error = %v", err)
			}
			if ext.OwnerID != "grp-1" || ext.Type != tt.typ {
				t.Errorf("extension = %+v", ext)
			}
		})
	}
}

func TestNewExtensionRejectsDenylistedTypes(t *testing.T) {
	for _, typ := range []ExtensionType{ExtShopping, ExtImageSub, ExtCatalogImage} {
		_, err := NewExtension("grp-1", typ, "", "", json.RawMessage(`{}`))
		if !errors.Is(err, ErrExtensionNotCreatable) {
			t.Errorf("NewExtension(%s) error = %v, want ErrExtensionNotCreatable", typ, err)
		}
		if typ.CreatableViaAPI() {
			t.Errorf("%s.CreatableViaAPI() = true", typ)
		}
	}
}

func TestParseExtensionType(t *testing.T) {
	if got := ParseExtensionType(" sub_links "); got != ExtSubLinks {
		t.Errorf("ParseExtensionType = %q", got)
	}
}
