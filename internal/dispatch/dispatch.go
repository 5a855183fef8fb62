// Package dispatch is the top-level entry point that matches on an
// account's vendor tag and calls into the matching vendor module
// directly, rather than routing every vendor behind one lowest-common-
// denominator client interface (see spec design note on dynamic dispatch
// across vendors). Vendor modules stay independently evolvable: kaku's
// three device profiles and inkline's ticket-balance model never have to
// be squeezed through a shared method set.
package dispatch

import (
	"context"

	"mangavault/internal/account"
	"mangavault/internal/batch"
	"mangavault/internal/planner"
	"mangavault/internal/vendor/inkline"
	"mangavault/internal/vendor/kaku"
	"mangavault/internal/vendorconst"
	vkaku "mangavault/internal/vendorconst/kaku"
	verrors "mangavault/pkg/errors"
)

// Known vendor tags, matched against account.Account.Vendor.
const (
	VendorKaku    = "kaku"
	VendorInkline = "inkline"
)

// Login authenticates against the vendor named by vendorTag and persists
// the resulting account. deviceTag only matters for kaku (android/apple/
// web); inkline has one device variant and ignores it.
func Login(ctx context.Context, store account.Store, vendorTag, deviceTag, email, password string) (account.Account, error) {
	switch vendorTag {
	case VendorKaku:
		tag := kakuDeviceTag(deviceTag)
		return kaku.Login(ctx, store, tag, email, password)
	case VendorInkline:
		return inkline.Login(ctx, store, email, password)
	default:
		return account.Account{}, verrors.ErrAccountNotFound.WithDetails("vendor", vendorTag)
	}
}

// kakuDeviceTag maps a CLI-supplied device string onto one of kaku's three
// device tags, defaulting to the web client when unspecified.
func kakuDeviceTag(deviceTag string) vendorconst.Tag {
	switch deviceTag {
	case "android":
		return vkaku.TagAndroid
	case "apple", "ios":
		return vkaku.TagApple
	default:
		return vkaku.TagWeb
	}
}

// Catalog fetches a vendor's title listing for an already-authenticated
// account.
func Catalog(ctx context.Context, store account.Store, acc account.Account, query string) ([]Title, error) {
	switch acc.Vendor {
	case VendorKaku:
		client, err := kaku.NewClient(acc, store)
		if err != nil {
			return nil, err
		}
		titles, err := client.ListTitles(ctx, query)
		if err != nil {
			return nil, err
		}
		out := make([]Title, 0, len(titles))
		for _, t := range titles {
			out = append(out, Title{ID: t.ID, Name: t.Name, Language: t.Language, Status: t.Status})
		}
		return out, nil
	case VendorInkline:
		client, err := inkline.NewClient(acc, store)
		if err != nil {
			return nil, err
		}
		titles, err := client.Titles(ctx, query)
		if err != nil {
			return nil, err
		}
		out := make([]Title, 0, len(titles))
		for _, t := range titles {
			out = append(out, Title{ID: t.ID, Name: t.Name, Language: t.Language, Status: t.Status})
		}
		return out, nil
	default:
		return nil, verrors.ErrAccountNotFound.WithDetails("vendor", acc.Vendor)
	}
}

// Title is the vendor-agnostic catalog entry dispatch hands back to CLI
// glue, after each vendor module's own shape is flattened into it.
type Title struct {
	ID       string
	Name     string
	Language string
	Status   string
}

// chapters resolves a title's purchasable chapters and the account's
// current balance as planner.Items/Balance, vendor-specific details
// already folded away.
func chapters(ctx context.Context, store account.Store, acc account.Account, titleID string) ([]planner.Item, planner.Balance, batch.Claimer, batch.SessionPersister, error) {
	switch acc.Vendor {
	case VendorKaku:
		client, err := kaku.NewClient(acc, store)
		if err != nil {
			return nil, planner.Balance{}, nil, nil, err
		}
		chs, err := client.Chapters(ctx, titleID)
		if err != nil {
			return nil, planner.Balance{}, nil, nil, err
		}
		items := make([]planner.Item, 0, len(chs))
		for _, c := range chs {
			items = append(items, c.ToPlannerItem())
		}
		return items, client.Balance(), client, client, nil
	case VendorInkline:
		client, err := inkline.NewClient(acc, store)
		if err != nil {
			return nil, planner.Balance{}, nil, nil, err
		}
		chs, err := client.Chapters(ctx, titleID)
		if err != nil {
			return nil, planner.Balance{}, nil, nil, err
		}
		items := make([]planner.Item, 0, len(chs))
		for _, c := range chs {
			items = append(items, c.ToPlannerItem())
		}
		return items, inkline.ToPlannerBalance(client.Balance()), client, client, nil
	default:
		return nil, planner.Balance{}, nil, nil, verrors.ErrAccountNotFound.WithDetails("vendor", acc.Vendor)
	}
}

// Precalculate plans (without executing) the purchase of every chapter in
// chapterIDs against the account's current balance, letting the CLI
// report the total cost before committing to it.
func Precalculate(ctx context.Context, store account.Store, acc account.Account, titleID string, chapterIDs []string) ([]planner.Plan, error) {
	items, balance, _, _, err := chapters(ctx, store, acc, titleID)
	if err != nil {
		return nil, err
	}
	selected := filterItems(items, chapterIDs)
	return planner.PlanBatch(selected, balance), nil
}

// PurchaseAndDownload runs the shared batch loop (component G) against
// the resolved vendor client, so CLI glue never touches vendor-specific
// types directly.
func PurchaseAndDownload(ctx context.Context, deps batch.Deps, store account.Store, acc account.Account, titleID string, chapterIDs []string) (batch.Summary, error) {
	items, balance, claimer, persister, err := chapters(ctx, store, acc, titleID)
	if err != nil {
		return batch.Summary{}, err
	}

	deps.Claimer = claimer
	deps.Persister = persister
	deps.Vendor = acc.Vendor

	selected := filterItems(items, chapterIDs)
	return batch.Run(ctx, deps, selected, balance)
}

func filterItems(items []planner.Item, ids []string) []planner.Item {
	if len(ids) == 0 {
		return items
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]planner.Item, 0, len(ids))
	for _, item := range items {
		if _, ok := want[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}
