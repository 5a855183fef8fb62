// Package kaku holds the device profiles and endpoint constants for the
// "kaku" vendor: a mixed-currency manga storefront reachable over both a
// signed web API and signed mobile (Android/iOS) APIs.
package kaku

import (
	"sync"

	"mangavault/internal/vendorconst"
)

// Device tags accepted by Profile.
const (
	TagAndroid vendorconst.Tag = "android"
	TagApple   vendorconst.Tag = "apple"
	TagWeb     vendorconst.Tag = "web"
)

var (
	androidOnce sync.Once
	androidProf vendorconst.Profile

	appleOnce sync.Once
	appleProf vendorconst.Profile

	webOnce sync.Once
	webProf vendorconst.Profile
)

func android() vendorconst.Profile {
	androidOnce.Do(func() {
		androidProf = vendorconst.Profile{
			UserAgent:      vendorconst.MustDecodeB64("b2todHRwLzQuOS4z"),
			ImageUserAgent: vendorconst.MustDecodeB64("b2todHRwLzQuOS4z"),
			Platform:       "2",
			Version:        "6.1.0",
			DisplayVersion: "2.1.5",
			HashHeader:     vendorconst.MustDecodeB64("eC1rYWt1LWhhc2g="),
		}
	})
	return androidProf
}

func apple() vendorconst.Profile {
	appleOnce.Do(func() {
		appleProf = vendorconst.Profile{
			UserAgent:      vendorconst.MustDecodeB64("a2FrdS1pb3MvMy40LjEgKGNvbS5rYWt1LnJlYWRlcjsgYnVpbGQ6My40LjE7IGlPUyAxNy4xLjIpIEFsYW1vZmlyZS81LjkuMA=="),
			ImageUserAgent: vendorconst.MustDecodeB64("a2FrdS1pb3MvMy40LjEgQ0ZOZXR3b3JrLzE0ODUgRGFyd2luLzIzLjEuMA=="),
			Platform:       "1",
			Version:        "5.3.0",
			DisplayVersion: "",
			HashHeader:     vendorconst.MustDecodeB64("eC1rYWt1LWhhc2g="),
		}
	})
	return appleProf
}

func web() vendorconst.Profile {
	webOnce.Do(func() {
		chromeUA := vendorconst.MustDecodeB64("TW96aWxsYS81LjAgKFdpbmRvd3MgTlQgMTAuMDsgV2luNjQ7IHg2NCkgQXBwbGVXZWJLaXQvNTM3LjM2IChLSFRNTCwgbGlrZSBHZWNrbykgQ2hyb21lLzEyNy4wLjAuMCBTYWZhcmkvNTM3LjM2")
		webProf = vendorconst.Profile{
			UserAgent:      chromeUA,
			ImageUserAgent: chromeUA,
			Platform:       "3",
			Version:        "6.0.0",
			DisplayVersion: "",
			HashHeader:     vendorconst.MustDecodeB64("WC1LYWt1LUhhc2g="),
		}
	})
	return webProf
}

// ProfileFor returns the device profile for tag, decoding its constants on
// first use. It panics on an unrecognized tag: a caller passing a tag this
// vendor doesn't support is a programmer error, not a runtime condition to
// recover from.
func ProfileFor(tag vendorconst.Tag) vendorconst.Profile {
	switch tag {
	case TagAndroid:
		return android()
	case TagApple:
		return apple()
	case TagWeb:
		return web()
	default:
		panic("kaku: unknown device tag: " + string(tag))
	}
}

// Endpoint hosts, decoded once.
var (
	baseAPIOnce sync.Once
	baseAPI     string

	baseImgOnce sync.Once
	baseImg     string
)

func BaseAPI() string {
	baseAPIOnce.Do(func() {
		baseAPI = vendorconst.MustDecodeB64("aHR0cHM6Ly9hcGkua2FrdW1hbmdhLmV4YW1wbGU=")
	})
	return baseAPI
}

func BaseImage() string {
	baseImgOnce.Do(func() {
		baseImg = vendorconst.MustDecodeB64("aHR0cHM6Ly9jZG4ua2FrdW1hbmdhLmV4YW1wbGU=")
	})
	return baseImg
}
