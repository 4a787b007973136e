package expansion

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"bidpilot/internal/models"
)

type fakeCloneAPI struct {
	ads  []models.Ad
	exts []models.Extension

	adsErr error

	createdAds  []string
	createdExts []models.ExtensionType
	adErr       map[string]error
}

func (f *fakeCloneAPI) Ads(_ context.Context, _ string) ([]models.Ad, error) {
	return f.ads, f.adsErr
}

func (f *fakeCloneAPI) CreateAd(_ context.Context, adGroupID, adType string, _ json.RawMessage) (*models.Ad, error) {
	if err := f.adErr[adType]; err != nil {
		return nil, err
	}
	f.createdAds = append(f.createdAds, adType)
	return &models.Ad{ID: "ad-new", AdGroupID: adGroupID, Type: adType}, nil
}

func (f *fakeCloneAPI) Extensions(_ context.Context, _ string) ([]models.Extension, error) {
	return f.exts, nil
}

func (f *fakeCloneAPI) CreateExtension(_ context.Context, ext *models.Extension) (*models.Extension, error) {
	f.createdExts = append(f.createdExts, ext.Type)
	return ext, nil
}

func TestCloneGroupAssets(t *testing.T) {
	api := &fakeCloneAPI{
		ads: []models.Ad{
			{ID: "ad-1", Type: "TEXT", RawContent: json.RawMessage(`{"headline":"Sale"}`)},
		},
		exts: []models.Extension{
			{ID: "ext-1", Type: models.ExtSubLinks, Content: json.RawMessage(`{"subLinks":[]}`)},
			{ID: "ext-2", Type: models.ExtShopping, Content: json.RawMessage(`{}`)},
		},
	}

	result, err := NewCloner(api).CloneGroupAssets(context.Background(), "grp-src", "grp-dst")
	if err != nil {
		t.Fatalf("CloneGroupAssets() error = %v", err)
	}

	if len(api.createdAds) != 1 || api.createdAds[0] != "TEXT" {
		t.Errorf("createdAds = %v, want [TEXT]", api.createdAds)
	}
	if len(api.createdExts) != 1 || api.createdExts[0] != models.ExtSubLinks {
		t.Errorf("createdExts = %v, want the sub-links extension only", api.createdExts)
	}
	want := CloneResult{AdsCloned: 1, ExtensionsCloned: 1}
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}
}

func TestCloneGroupAssetsItemFailureIsNotFatal(t *testing.T) {
	api := &fakeCloneAPI{
		ads: []models.Ad{
			{ID: "ad-1", Type: "TEXT", RawContent: json.RawMessage(`{"headline":"A"}`)},
			{ID: "ad-2", Type: "RSA_AD", RawContent: json.RawMessage(`{"headline":"B"}`)},
		},
		adErr: map[string]error{"TEXT": errors.New("rejected")},
	}

	result, err := NewCloner(api).CloneGroupAssets(context.Background(), "grp-src", "grp-dst")
	if err != nil {
		t.Fatalf("CloneGroupAssets() error = %v", err)
	}
	if len(api.createdAds) != 1 || api.createdAds[0] != "RSA_AD" {
		t.Errorf("createdAds = %v, want [RSA_AD]", api.createdAds)
	}
	if result.AdsCloned != 1 || result.AdsFailed != 1 {
		t.Errorf("result = %+v, want one cloned and one failed ad", result)
	}
}

func TestCloneGroupAssetsListFailureIsFatal(t *testing.T) {
	api := &fakeCloneAPI{adsErr: errors.New("upstream down")}
	if _, err := NewCloner(api).CloneGroupAssets(context.Background(), "grp-src", "grp-dst"); err == nil {
		t.Fatal("CloneGroupAssets() = nil error, want failure")
	}
}
