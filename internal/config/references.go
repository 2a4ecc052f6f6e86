package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/profiler.report/internal/profiler"
)

// Machines with commissioned reference profiles.
const (
	MachineVersa        = "VERSA"
	MachineEdge         = "EDGE"
	MachineSallegVarian = "SALLEG_VARIAN"
)

// KnownReferences lists the beam energies with a reference export per machine.
var KnownReferences = map[string][]string{
	MachineVersa:        {"6MV", "10MV", "18MV", "6FFF", "10FFF", "6MEV", "9MEV", "12MEV", "15MEV"},
	MachineEdge:         {"6MV", "6FFF", "10FFF", "25FFF"},
	MachineSallegVarian: {"6MV"},
}

// KnownMachine reports whether name is in KnownReferences, ignoring case.
func KnownMachine(name string) bool {
	_, ok := KnownReferences[strings.ToUpper(name)]
	return ok
}

// ReferencePath returns dir/<MACHINE>_ref<ENERGY>.txt. Machine and energy are
// upper-cased; unknown combinations are rejected.
func ReferencePath(dir, machine, energy string) (string, error) {
	machine = strings.ToUpper(strings.TrimSpace(machine))
	energy = strings.ToUpper(strings.TrimSpace(energy))

	energies, ok := KnownReferences[machine]
	if !ok {
		return "", fmt.Errorf("unknown machine %q", machine)
	}
	found := false
	for _, e := range energies {
		if e == energy {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("machine %s has no %s reference (have %s)", machine, energy, strings.Join(energies, ", "))
	}
	return filepath.Join(dir, machine+"_ref"+energy+".txt"), nil
}

// ModalityForEnergy infers the modality from an energy label: MV and FFF beams
// are photons, MEV beams are electrons.
func ModalityForEnergy(energy string) (profiler.Modality, error) {
	e := strings.ToUpper(strings.TrimSpace(energy))
	switch {
	case strings.HasSuffix(e, "MEV"):
		return profiler.Electron, nil
	case strings.HasSuffix(e, "MV"), strings.HasSuffix(e, "FFF"):
		return profiler.Photon, nil
	default:
		return 0, fmt.Errorf("%w: cannot infer modality from energy %q", profiler.ErrInvalidModality, energy)
	}
}
