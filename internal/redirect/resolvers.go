package redirect

import (
	"context"

	"redirector/internal/common/errors"
	"redirector/internal/storage"
)

// DefaultVersion is used when no version record is active
const DefaultVersion = 0

// ResolveVersion returns explicit when set, otherwise the first stored
// version whose activeVersion is positive, otherwise DefaultVersion.
func ResolveVersion(ctx context.Context, store VersionStore, explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}

	versions, err := store.SearchVersions(ctx, storage.Gt(storage.AttrActiveVersion, 0))
	if err != nil {
		return 0, errors.StoreError("failed to look up active version", err)
	}
	if len(versions) == 0 {
		return DefaultVersion, nil
	}
	return versions[0].ActiveVersion, nil
}

// ResolveHostOnly returns explicit when set, otherwise the stored policy for
// host, otherwise false.
func ResolveHostOnly(ctx context.Context, store HostStore, host string, explicit *bool) (bool, error) {
	if explicit != nil {
		return *explicit, nil
	}

	hosts, err := store.SearchHosts(ctx, storage.Eq(storage.AttrHost, host))
	if err != nil {
		return false, errors.StoreError("failed to look up host policy", err).WithContext("host", host)
	}
	if len(hosts) == 0 {
		return false, nil
	}
	return hosts[0].HostOnly, nil
}
