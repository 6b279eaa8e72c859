// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/requirements-engine/pkg/types"

// ParseOverrides converts user-supplied override names into Overrides.
// Empty strings leave the corresponding decision to the classifiers.
func ParseOverrides(framework, database, auth string) (Overrides, error) {
	var o Overrides
	if framework != "" {
		f, err := types.ParseFramework(framework)
		if err != nil {
			return Overrides{}, err
		}
		o.Framework = &f
	}
	if database != "" {
		d, err := types.ParseDatabase(database)
		if err != nil {
			return Overrides{}, err
		}
		o.Database = &d
	}
	if auth != "" {
		a, err := types.ParseAuth(auth)
		if err != nil {
			return Overrides{}, err
		}
		o.Auth = &a
	}
	return o, nil
}
