package expansion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"bidpilot/internal/models"
)

// CloneAPI is the slice of the upstream gateway asset cloning needs.
type CloneAPI interface {
	Ads(ctx context.Context, adGroupID string) ([]models.Ad, error)
	CreateAd(ctx context.Context, adGroupID, adType string, content json.RawMessage) (*models.Ad, error)
	Extensions(ctx context.Context, ownerID string) ([]models.Extension, error)
	CreateExtension(ctx context.Context, ext *models.Extension) (*models.Extension, error)
}

// CloneResult counts what an asset copy achieved per category. Extension
// types the upstream refuses to create programmatically are skipped
// without counting as failures.
type CloneResult struct {
	AdsCloned        int `json:"adsCloned"`
	AdsFailed        int `json:"adsFailed"`
	ExtensionsCloned int `json:"extensionsCloned"`
	ExtensionsFailed int `json:"extensionsFailed"`
}

// Cloner copies the creatives and extensions of one ad group into another,
// so overflow groups serve the same ads as their source.
type Cloner struct {
	api CloneAPI
}

func NewCloner(api CloneAPI) *Cloner {
	return &Cloner{api: api}
}

// CloneGroupAssets copies every ad and creatable extension from src into
// dst. Items are independent: a failed copy is counted and skipped, and
// the error returned reflects only total failure to list the source.
func (c *Cloner) CloneGroupAssets(ctx context.Context, src, dst string) (CloneResult, error) {
	var result CloneResult

	if err := c.cloneAds(ctx, src, dst, &result); err != nil {
		return result, err
	}
	if err := c.cloneExtensions(ctx, src, dst, &result); err != nil {
		return result, err
	}
	return result, nil
}

func (c *Cloner) cloneAds(ctx context.Context, src, dst string, result *CloneResult) error {
	ads, err := c.api.Ads(ctx, src)
	if err != nil {
		return fmt.Errorf("list source ads: %w", err)
	}
	for _, ad := range ads {
		content, err := ad.ContentJSON()
		if err != nil {
			slog.Warn("skipping ad with undecodable content", "ad", ad.ID, "error", err)
			result.AdsFailed++
			continue
		}
		if _, err := c.api.CreateAd(ctx, dst, ad.Type, content); err != nil {
			slog.Warn("ad copy failed", "ad", ad.ID, "group", dst, "error", err)
			result.AdsFailed++
			continue
		}
		result.AdsCloned++
	}
	return nil
}

func (c *Cloner) cloneExtensions(ctx context.Context, src, dst string, result *CloneResult) error {
	exts, err := c.api.Extensions(ctx, src)
	if err != nil {
		return fmt.Errorf("list source extensions: %w", err)
	}
	for _, ext := range exts {
		if !ext.Type.CreatableViaAPI() {
			continue
		}
		content, err := ext.ContentJSON()
		if err != nil {
			slog.Warn("skipping extension with undecodable content", "extension", ext.ID, "error", err)
			result.ExtensionsFailed++
			continue
		}
		copyExt := &models.Extension{
			OwnerID:         dst,
			Type:            ext.Type,
			PCChannelID:     ext.PCChannelID,
			MobileChannelID: ext.MobileChannelID,
			Content:         content,
		}
		if _, err := c.api.CreateExtension(ctx, copyExt); err != nil {
			slog.Warn("extension copy failed", "extension", ext.ID, "group", dst, "error", err)
			result.ExtensionsFailed++
			continue
		}
		result.ExtensionsCloned++
	}
	return nil
}
