package metadata

import "fmt"

// Upgrade brings a deserialized Metadata forward to CurrentVersion. The chain
// is deliberately linear and forward-only: Load upgrades the catalog in
// memory, the `update` command writes the upgraded shape back to
// configuration.json, and earlier versions are never regenerated from the
// latest.
func Upgrade(m Metadata) (Metadata, error) {
	switch m.Version {
	case Version3:
		m = upgradeV3ToV4(m)
		fallthrough
	case Version4:
		m = upgradeV4ToV5(m)
		fallthrough
	case Version5:
		return m, nil
	default:
		return Metadata{}, fmt.Errorf("metadata: unknown configuration version %q", m.Version)
	}
}

// upgradeV3ToV4 introduces MutationsVersion, defaulting deployments that
// predate the experimental/v1 split to the experimental family so existing
// generated procedure names keep resolving.
func upgradeV3ToV4(m Metadata) Metadata {
	m.Version = Version4
	if m.MutationsVersion == nil {
		v := MutationsExperimental
		m.MutationsVersion = &v
	}
	return m
}

// upgradeV4ToV5 introduces ScalarTypeRepresentations; a v4 catalog with none
// recorded simply has no representation overrides and every scalar renders
// without a cast, which is the v4 behavior anyway.
func upgradeV4ToV5(m Metadata) Metadata {
	m.Version = Version5
	if m.ScalarTypeRepresentations == nil {
		m.ScalarTypeRepresentations = map[string]TypeRepresentation{}
	}
	return m
}
