package types

// Version is the canonical project version.
// The CLI, report records and completion events all carry this version.
const Version = "0.3.0"

// ContractVersion is the version of the report record and completion event
// shapes. Bumped only when a field is renamed or removed.
const ContractVersion = "0.2.0"
