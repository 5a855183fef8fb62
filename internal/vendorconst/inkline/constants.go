// Package inkline holds the device profile and endpoint constants for the
// "inkline" vendor: a mobile-only storefront with a paid/free-split balance
// model and a protobuf wire format.
package inkline

import (
	"sync"

	"mangavault/internal/vendorconst"
)

// TagMobile is the only device variant inkline exposes.
const TagMobile vendorconst.Tag = "mobile"

var (
	mobileOnce sync.Once
	mobileProf vendorconst.Profile
)

func mobile() vendorconst.Profile {
	mobileOnce.Do(func() {
		mobileProf = vendorconst.Profile{
			UserAgent:      vendorconst.MustDecodeB64("aW5rbGluZS1hbmRyb2lkLzIuOC4wIChMaW51eDsgQW5kcm9pZCAxNCkgT2tIdHRwLzQuMTIuMA=="),
			ImageUserAgent: vendorconst.MustDecodeB64("aW5rbGluZS1hbmRyb2lkLzIuOC4wIGltYWdlLWZldGNo"),
			Platform:       "2",
			Version:        "2.8.0",
			DisplayVersion: "",
			HashHeader:     vendorconst.MustDecodeB64("eC1pbmtsaW5lLWhhc2g="),
		}
	})
	return mobileProf
}

// ProfileFor returns the device profile for tag. It panics on any tag other
// than TagMobile: inkline has no web or iOS client in this client library.
func ProfileFor(tag vendorconst.Tag) vendorconst.Profile {
	if tag != TagMobile {
		panic("inkline: unknown device tag: " + string(tag))
	}
	return mobile()
}

var (
	baseAPIOnce sync.Once
	baseAPI     string

	baseImgOnce sync.Once
	baseImg     string
)

func BaseAPI() string {
	baseAPIOnce.Do(func() {
		baseAPI = vendorconst.MustDecodeB64("aHR0cHM6Ly9hcGkuaW5rbGluZS5leGFtcGxl")
	})
	return baseAPI
}

func BaseImage() string {
	baseImgOnce.Do(func() {
		baseImg = vendorconst.MustDecodeB64("aHR0cHM6Ly9pbWcuaW5rbGluZS5leGFtcGxl")
	})
	return baseImg
}
