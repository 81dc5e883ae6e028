package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version string = ATSSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// ATSSemVer is the semantic version of the contract state machine.
	// Stored VersionInfo records are compared against it on migrate.
	// Must be a string because scripts read this file.
	ATSSemVer = "0.19.2"

	// Definition names the contract in stored VersionInfo records.
	Definition = "ats-smart-contract"

	// ModifyContractMinVersion is the first stored version that supports
	// modify_contract.
	ModifyContractMinVersion = "0.16.2"
)
