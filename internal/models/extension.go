package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ExtensionType tags the variant of an ad extension payload.
type ExtensionType string

// Extension types the manager knows how to create. The upstream accepts
// more; unknown ones can still be listed and cloned verbatim.
const (
	ExtSubLinks     ExtensionType = "SUB_LINKS"
	ExtPhone        ExtensionType = "PHONE"
	ExtLocation     ExtensionType = "LOCATION"
	ExtPromotion    ExtensionType = "PROMOTION"
	ExtDescription  ExtensionType = "DESCRIPTION"
	ExtPriceLinks   ExtensionType = "PRICE_LINKS"
	ExtShopping     ExtensionType = "SHOPPING_EXTRA"
	ExtImageSub     ExtensionType = "IMAGE_SUB_LINKS"
	ExtCatalogImage ExtensionType = "CATALOG_IMAGE"
)

// variant describes what a creatable extension type requires.
type variant struct {
	needsContent bool
	needsChannel bool
}

// variants is the construction table for types this API can create.
// Types requiring catalog/shopping linkage or sub-image assets cannot be
// created programmatically and are deliberately absent.
var variants = map[ExtensionType]variant{
	ExtSubLinks:    {needsContent: true},
	ExtPromotion:   {needsContent: true},
	ExtDescription: {needsContent: true},
	ExtPriceLinks:  {needsContent: true},
	ExtPhone:       {needsChannel: true},
	ExtLocation:    {needsChannel: true},
}

// cloneDenylist holds types the upstream rejects on programmatic creation;
// the cloner skips them instead of collecting guaranteed failures.
var cloneDenylist = map[ExtensionType]bool{
	ExtShopping:     true,
	ExtImageSub:     true,
	ExtCatalogImage: true,
}

var (
	ErrUnknownExtensionType  = errors.New("unknown extension type")
	ErrExtensionNotCreatable = errors.New("extension type cannot be created via the API")
)

// ParseExtensionType normalizes a raw type string to its canonical form.
func ParseExtensionType(raw string) ExtensionType {
	return ExtensionType(strings.ToUpper(strings.TrimSpace(raw)))
}

// CreatableViaAPI reports whether this type may be submitted to the
// creation endpoint at all.
func (t ExtensionType) CreatableViaAPI() bool {
	return !cloneDenylist[t]
}

// Extension is supplementary ad content attached to an ad group. Content
// keeps the nested adExtension payload in whatever encoding it arrived.
type Extension struct {
	ID              string          `json:"nccAdExtensionId"`
	OwnerID         string          `json:"ownerId"`
	Type            ExtensionType   `json:"type"`
	PCChannelID     string          `json:"pcChannelId,omitempty"`
	MobileChannelID string          `json:"mobileChannelId,omitempty"`
	Content         json.RawMessage `json:"adExtension,omitempty"`
	UserLock        bool            `json:"userLock"`
}

// ContentJSON returns the nested payload as a plain JSON object.
func (e *Extension) ContentJSON() (json.RawMessage, error) {
	return unwrapNested(e.Content)
}

// NewExtension builds an extension for submission, enforcing the variant's
// required fields at construction instead of at the upstream boundary.
func NewExtension(ownerID string, typ ExtensionType, pcChannel, mobileChannel string, content json.RawMessage) (*Extension, error) {
	if !typ.CreatableViaAPI() {
		return nil, fmt.Errorf("%s: %w", typ, ErrExtensionNotCreatable)
	}
	v, ok := variants[typ]
	if !ok {
		return nil, fmt.Errorf("%s: %w", typ, ErrUnknownExtensionType)
	}
	if v.needsContent && len(content) == 0 {
		return nil, fmt.Errorf("extension type %s requires an adExtension payload", typ)
	}
	if v.needsChannel && pcChannel == "" && mobileChannel == "" {
		return nil, fmt.Errorf("extension type %s requires a business channel", typ)
	}
	return &Extension{
		OwnerID:         ownerID,
		Type:            typ,
		PCChannelID:     pcChannel,
		MobileChannelID: mobileChannel,
		Content:         content,
	}, nil
}

// BusinessChannel is an upstream channel an extension can reference.
type BusinessChannel struct {
	ID         string `json:"nccBusinessChannelId"`
	Name       string `json:"name"`
	ChannelKey string `json:"channelKey"`
	Type       string `json:"channelType"`
}
