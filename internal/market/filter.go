package market

import (
	"strings"

	"starcg-market-api/internal/model"
)

// FilterByName narrows resp in place to items and pets whose name contains
// search, ignoring case. Groups left empty are removed, and so are stalls whose
// cdKey no longer has any listing. A blank search leaves resp untouched.
func FilterByName(resp *model.MarketResponse, search string) *model.MarketResponse {
	if resp == nil || strings.TrimSpace(search) == "" {
		return resp
	}

	needle := FoldQuery(search)
	valid := make(map[string]struct{})

	for cd, items := range resp.ItemsByCd {
		kept := items[:0:0]
		for _, item := range items {
			if containsFolded(item.Name, needle) {
				kept = append(kept, item)
			}
		}
		if len(kept) == 0 {
			delete(resp.ItemsByCd, cd)
			continue
		}
		resp.ItemsByCd[cd] = kept
		valid[cd] = struct{}{}
	}

	for cd, pets := range resp.PetsByCd {
		kept := pets[:0:0]
		for _, pet := range pets {
			if containsFolded(pet.Name, needle) {
				kept = append(kept, pet)
			}
		}
		if len(kept) == 0 {
			delete(resp.PetsByCd, cd)
			continue
		}
		resp.PetsByCd[cd] = kept
		valid[cd] = struct{}{}
	}

	stalls := make([]model.MarketStall, 0, len(resp.Stalls))
	for _, stall := range resp.Stalls {
		if _, ok := valid[stall.CdKey]; ok {
			stalls = append(stalls, stall)
		}
	}
	resp.Stalls = stalls

	return resp
}
