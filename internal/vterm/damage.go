package vterm

// Damage is an inclusive range of screen rows changed since the last
// DamageRegion call. Changes span full rows.
type Damage struct {
	StartRow int
	EndRow   int
}

// Rows returns the number of damaged rows.
func (d Damage) Rows() int {
	return d.EndRow - d.StartRow + 1
}

type damageTracker struct {
	dirty    bool
	min, max int
}

func (d *damageTracker) mark(start, end int) {
	if start > end {
		start, end = end, start
	}
	if !d.dirty {
		d.dirty = true
		d.min, d.max = start, end
		return
	}
	if start < d.min {
		d.min = start
	}
	if end > d.max {
		d.max = end
	}
}

func (d *damageTracker) markAll(rows int) {
	d.mark(0, rows-1)
}

func (d *damageTracker) take(rows int) (Damage, bool) {
	if !d.dirty {
		return Damage{}, false
	}
	d.dirty = false
	dmg := Damage{StartRow: d.min, EndRow: d.max}
	if dmg.StartRow < 0 {
		dmg.StartRow = 0
	}
	if dmg.EndRow > rows-1 {
		dmg.EndRow = rows - 1
	}
	if dmg.StartRow > dmg.EndRow {
		return Damage{}, false
	}
	return dmg, true
}

// DamageRegion returns the rows changed since the previous call and clears
// the record. ok is false when nothing changed.
func (v *VTerm) DamageRegion() (Damage, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.damage.take(v.rows)
}

// touch records a change to rows [start, end].
func (v *VTerm) touch(start, end int) {
	v.damage.mark(start, end)
	v.render.invalidate(start, end)
}

func (v *VTerm) touchRow(row int) {
	v.touch(row, row)
}

func (v *VTerm) touchAll() {
	v.damage.markAll(v.rows)
	v.render.reset(v.rows)
}
