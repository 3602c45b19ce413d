// mkcohort writes a synthetic cohort directory of Parquet tables covering
// every detection outcome: community and hospital onset, censored courses,
// repeat cultures, vent transitions, and quiet stays with no cultures.
// Usage: go run ./cmd/mkcohort --out testdata/cohort --hospitalizations 22
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sepsislab/asewatch/internal/synth"
)

func main() {
	out := flag.String("out", "testdata/cohort", "output directory")
	n := flag.Int("hospitalizations", 22, "number of hospitalizations to generate")
	flag.Parse()

	if *n < 1 {
		fmt.Fprintf(os.Stderr, "hospitalizations must be at least 1\n")
		os.Exit(1)
	}

	c := synth.Generate(*n)
	if err := synth.WriteDir(*out, c); err != nil {
		fmt.Fprintf(os.Stderr, "write cohort: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d hospitalizations to %s\n", len(c.Hospitalizations), *out)
	fmt.Printf("  blood_cultures:      %d rows\n", len(c.BloodCultures))
	fmt.Printf("  antimicrobials:      %d rows\n", len(c.Antimicrobials))
	fmt.Printf("  labs:                %d rows\n", len(c.Labs))
	fmt.Printf("  continuous_meds:     %d rows\n", len(c.ContinuousMeds))
	fmt.Printf("  respiratory_support: %d rows\n", len(c.RespiratorySupport))
	fmt.Printf("  patient:             %d rows\n", len(c.Patients))
}
