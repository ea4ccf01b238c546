// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package conditions

import "themebuilder/internal/models"

// freeTargets can be used without a pro entitlement.
var freeTargets = map[models.Target]bool{
	models.TargetPostType: true,
	models.TargetSearch:   true,
	models.TargetNotFound: true,
}

// freePostTypes are the only post types a free post_type rule may list.
var freePostTypes = map[string]bool{
	models.PostTypePost: true,
	models.PostTypePage: true,
}

// IsProOnly reports whether any rule of tree needs a pro entitlement.
func IsProOnly(tree models.ConditionTree) bool {
	for _, g := range tree.Groups {
		for _, r := range g.Rules {
			if !freeTargets[r.Target] {
				return true
			}
			if r.Target == models.TargetPostType {
				for _, pt := range r.Value.Strings() {
					if !freePostTypes[pt] {
						return true
					}
				}
			}
		}
	}
	return false
}
