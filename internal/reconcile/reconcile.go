// Package reconcile computes the difference between the bins a zone has and
// the bins its submitted structure asks for. Planning is pure: the store
// executes a plan inside a transaction, and previews only read it.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/erazemk/regali/internal/model"
	"github.com/erazemk/regali/internal/structure"
)

// Options controls how a plan treats existing bins.
type Options struct {
	// RegenerateBins enables full reconciliation. When false, only missing
	// bins are created and nothing is updated, deleted or blocked.
	RegenerateBins bool
	// ForceRemoveOccupied deletes occupied removal candidates and detaches
	// their items instead of blocking them.
	ForceRemoveOccupied bool
}

// Update is a preserved bin whose stored attributes must be refreshed.
type Update struct {
	Bin  model.Bin
	Slot structure.Slot
}

// Removal is a bin that is not part of the desired structure.
type Removal struct {
	Bin    model.Bin
	Reason string
}

// Detaches reports whether removing the bin detaches items.
func (r Removal) Detaches() bool {
	return r.Bin.ItemCount > 0
}

// BinPlan is the full set of changes for one reconciliation.
type BinPlan struct {
	Creates   []structure.Slot
	Updates   []Update
	Preserved []model.Bin
	Deletes   []Removal
	Blocks    []Removal

	SkippedUpdates  int
	SkippedRemovals int
}

// Plan diffs the desired slots against the existing bins of a zone. Bin
// identity is the coordinate only; addresses and labels are refreshed on
// the preserved bin, never used to match.
func Plan(slots []structure.Slot, existing []model.Bin, opts Options) *BinPlan {
	byCoord := make(map[model.Coordinate]model.Bin, len(existing))
	for _, b := range existing {
		byCoord[b.Coordinate] = b
	}

	p := &BinPlan{}
	wanted := make(map[model.Coordinate]struct{}, len(slots))
	for _, slot := range slots {
		wanted[slot.Coordinate] = struct{}{}

		bin, ok := byCoord[slot.Coordinate]
		if !ok {
			p.Creates = append(p.Creates, slot)
			continue
		}

		p.Preserved = append(p.Preserved, bin)
		if !needsUpdate(bin, slot) {
			continue
		}
		if !opts.RegenerateBins {
			p.SkippedUpdates++
			continue
		}
		p.Updates = append(p.Updates, Update{Bin: bin, Slot: slot})
	}

	var candidates []model.Bin
	for _, b := range existing {
		if _, ok := wanted[b.Coordinate]; !ok {
			candidates = append(candidates, b)
		}
	}

	if !opts.RegenerateBins {
		p.SkippedRemovals = len(candidates)
		return p
	}

	p.Deletes, p.Blocks = PlanRemoval(candidates, opts.ForceRemoveOccupied, "forceRemoveOccupiedBins")
	return p
}

// PlanRemoval splits removal candidates into bins that can be deleted and
// bins that must be blocked. Empty bins are always deletable; occupied bins
// only when force is set. flag names the override in the blocked reason.
func PlanRemoval(candidates []model.Bin, force bool, flag string) (deletes, blocks []Removal) {
	sorted := make([]model.Bin, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	for _, b := range sorted {
		if b.Occupancy == 0 && b.ItemCount == 0 {
			deletes = append(deletes, Removal{Bin: b})
			continue
		}
		if force {
			deletes = append(deletes, Removal{Bin: b})
			continue
		}
		blocks = append(blocks, Removal{
			Bin:    b,
			Reason: fmt.Sprintf("bin holds %d item(s) with total quantity %d; set %s to remove it", b.ItemCount, b.Occupancy, flag),
		})
	}
	return deletes, blocks
}

func needsUpdate(b model.Bin, s structure.Slot) bool {
	return b.Address != s.Address ||
		b.CorridorLabel != s.CorridorLabel ||
		b.ShelfLabel != s.ShelfLabel ||
		b.PositionLabel != s.PositionLabel ||
		b.Capacity != s.Capacity ||
		b.Status != model.BinStatusActive
}

// Readdress derives the address of every blocked bin from zoneCode. Blocked
// bins have no slot in the new structure, so Plan leaves their stored
// address alone.
func (p *BinPlan) Readdress(zoneCode string) {
	for i := range p.Blocks {
		c := p.Blocks[i].Bin.Coordinate
		p.Blocks[i].Bin.Address = structure.Address(zoneCode, c.Corridor, c.Shelf, c.Position)
	}
}

// ItemsDetached is the number of item records the plan detaches.
func (p *BinPlan) ItemsDetached() int {
	n := 0
	for _, d := range p.Deletes {
		n += d.Bin.ItemCount
	}
	return n
}

// BlockedBins describes every blocked bin of the plan.
func (p *BinPlan) BlockedBins() []model.BlockedBin {
	return BlockedList(p.Blocks)
}

// BlockedList converts blocked removals into their reported form.
func BlockedList(blocks []Removal) []model.BlockedBin {
	out := make([]model.BlockedBin, 0, len(blocks))
	for _, r := range blocks {
		out = append(out, model.BlockedBin{
			BinID:      r.Bin.ID,
			Coordinate: r.Bin.Coordinate,
			Address:    r.Bin.Address,
			Occupancy:  r.Bin.Occupancy,
			ItemCount:  r.Bin.ItemCount,
			Reason:     r.Reason,
		})
	}
	return out
}

// Result reports the plan's counts. Apply and preview both build their
// response here, so a preview always matches the apply that follows it.
func (p *BinPlan) Result(zone *model.Zone) *model.StructureResult {
	return &model.StructureResult{
		Zone:            zone,
		BinsCreated:     len(p.Creates),
		BinsPreserved:   len(p.Preserved),
		BinsUpdated:     len(p.Updates),
		BinsDeleted:     len(p.Deletes),
		BinsBlocked:     len(p.Blocks),
		ItemsDetached:   p.ItemsDetached(),
		BlockedBins:     p.BlockedBins(),
		SkippedUpdates:  p.SkippedUpdates,
		SkippedRemovals: p.SkippedRemovals,
	}
}

// Empty reports whether executing the plan changes no bins.
func (p *BinPlan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0 && len(p.Blocks) == 0
}
