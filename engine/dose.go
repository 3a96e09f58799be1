/*
dose.go - Dose variants and milligram normalization

PURPOSE:
  Converts a compound's raw dose input into a normalized milligram quantity
  so that heterogeneous forms (injection volume x concentration, tablet
  count x mg/tablet) become comparable.

KEY INSIGHT:
  Partial dose data is normal, not exceptional. Courses mid-creation and
  historical records routinely lack a concentration or an mg-per-unit.
  NormalizeDose therefore degrades to Unknown - never to zero - so a dose
  is never silently underreported in user-facing output. Aggregations that
  want "unknown counts as 0" opt in explicitly via MgOrZero.

DOSE VARIANTS:
  InjectionDose: volume (ml) x concentration (mg/ml)
  OralDose:      units per administration x mg per unit

  The variants form a closed sum type via the unexported doseVariant method,
  so downstream code cannot reach an ill-typed half-populated dose.

SEE ALSO:
  - types.go: Compound, which carries a Dose
  - compliance.go: Uses MgOrZero for aggregate sums
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// DOSE - Tagged variant per administration class
// =============================================================================

// Dose is the closed set of dose specifications. Implementations are
// InjectionDose and OralDose.
type Dose interface {
	doseVariant()
}

// InjectionDose is a volume plus concentration. Either field may be
// non-positive, meaning "not entered".
type InjectionDose struct {
	VolumeML             decimal.Decimal
	ConcentrationMgPerML decimal.Decimal
}

func (InjectionDose) doseVariant() {}

// OralDose is a unit count plus mg per unit. MgPerUnit may be non-positive,
// meaning "not entered".
type OralDose struct {
	Units     decimal.Decimal
	MgPerUnit decimal.Decimal
}

func (OralDose) doseVariant() {}

// =============================================================================
// NORMALIZED DOSE - The comparable quantity
// =============================================================================

// NormalizedDose is the result of normalizing a dose spec. When Known is
// false the mg could not be computed and Mg is meaningless; the Display*
// fields still carry whatever presentation data was available (volume is
// always meaningful for an injection even without a known concentration).
type NormalizedDose struct {
	Mg    decimal.Decimal
	Known bool

	// DisplayVolumeML is set for injections with a known volume.
	DisplayVolumeML decimal.Decimal

	// DisplayUnits is set for orals with a known unit count.
	DisplayUnits decimal.Decimal
}

// Unknown returns the degenerate result: nothing computable, nothing to show.
func Unknown() NormalizedDose { return NormalizedDose{} }

// MgOrZero treats an uncomputed dose as zero. Callers use this ONLY in
// aggregate sums where the choice is documented; user-facing output must
// check Known instead.
func (n NormalizedDose) MgOrZero() decimal.Decimal {
	if !n.Known {
		return decimal.Zero
	}
	return n.Mg
}

// =============================================================================
// UNIT CONVERTER
// =============================================================================

// NormalizeDose converts a dose spec into a normalized milligram quantity.
// Never panics; absent or invalid numeric fields degrade to Unknown.
//
//	Injection: mg = volumeMl * concentrationMgPerMl, both required positive.
//	           Volume-only input keeps DisplayVolumeML for presentation.
//	Oral:      mg = units * mgPerUnit, units required positive, mgPerUnit
//	           optional (absent -> Unknown with DisplayUnits).
//
// A nil dose (nothing entered) yields Unknown.
func NormalizeDose(d Dose) NormalizedDose {
	switch d := d.(type) {
	case InjectionDose:
		if !d.VolumeML.IsPositive() {
			return Unknown()
		}
		if !d.ConcentrationMgPerML.IsPositive() {
			return NormalizedDose{DisplayVolumeML: d.VolumeML}
		}
		return NormalizedDose{
			Mg:              d.VolumeML.Mul(d.ConcentrationMgPerML),
			Known:           true,
			DisplayVolumeML: d.VolumeML,
		}

	case OralDose:
		if !d.Units.IsPositive() {
			return Unknown()
		}
		if !d.MgPerUnit.IsPositive() {
			return NormalizedDose{DisplayUnits: d.Units}
		}
		return NormalizedDose{
			Mg:           d.Units.Mul(d.MgPerUnit),
			Known:        true,
			DisplayUnits: d.Units,
		}

	default:
		return Unknown()
	}
}
