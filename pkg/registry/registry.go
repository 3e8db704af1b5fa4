// Package registry defines which blocks exist on which console pages and
// what permission each block requires. The service consults it to compute
// the set of blocks a user is allowed to see; layout normalization then
// treats that set as the known ids, so a permission change effectively
// changes which blocks exist for that user.
package registry

// Action is the permission verb a block can require on a module.
type Action string

const (
	// ActionView requires read access to the module.
	ActionView Action = "view"
	// ActionEdit requires write access to the module.
	ActionEdit Action = "edit"
)

// AdminModule is the pseudo-module marking admin-only blocks.
const AdminModule = "__admin__"

// Requirement names the module permission a block needs. A nil Requirement
// on a block means the block is public to every authenticated user.
type Requirement struct {
	Module string
	Action Action
}

// Permission is a user's access to one module.
type Permission struct {
	CanView bool
	CanEdit bool
}

// Grants is a user's effective permission set. Admins bypass module checks
// entirely.
type Grants struct {
	Admin   bool
	Modules map[string]Permission
}

// Allows reports whether the grants satisfy the requirement.
func (g Grants) Allows(req *Requirement) bool {
	if req == nil {
		return true
	}
	if req.Module == AdminModule {
		return g.Admin
	}
	if g.Admin {
		return true
	}
	perm, ok := g.Modules[req.Module]
	if !ok {
		return false
	}
	if req.Action == ActionEdit {
		return perm.CanEdit
	}
	return perm.CanView
}

// Registry maps page keys to their block rules.
type Registry map[string]map[string]*Requirement

// Page returns the block rules for a page key.
func (r Registry) Page(key string) (map[string]*Requirement, bool) {
	blocks, ok := r[key]
	return blocks, ok
}

// AllowedBlocks returns the ids of blocks on the page that the grants can
// see. The second return is false when the page key is unknown.
func (r Registry) AllowedBlocks(key string, g Grants) (map[string]struct{}, bool) {
	blocks, ok := r[key]
	if !ok {
		return nil, false
	}
	out := make(map[string]struct{}, len(blocks))
	for id, req := range blocks {
		if g.Allows(req) {
			out[id] = struct{}{}
		}
	}
	return out, true
}

func view(module string) *Requirement { return &Requirement{Module: module, Action: ActionView} }
func edit(module string) *Requirement { return &Requirement{Module: module, Action: ActionEdit} }
func admin() *Requirement             { return &Requirement{Module: AdminModule} }

// Default returns the console's page registry.
func Default() Registry {
	return Registry{
		"home": {
			"home-dashboard": nil,
		},
		"module:barcode": {
			"barcode-main": view("barcode"),
		},
		"module:clothing:inventory": {
			"inventory-main":   view("clothing"),
			"inventory-orders": view("clothing"),
			"inventory-stats":  view("clothing"),
		},
		"module:clothing:purchase-orders": {
			"purchase-orders-panel": view("purchase_orders"),
		},
		"module:purchasing:suggestions": {
			"purchase-suggestions-panel": view("purchase_suggestions"),
		},
		"module:reports:clothing": {
			"reports-main": view("reports"),
		},
		"module:suppliers": {
			"suppliers-main": view("suppliers"),
		},
		"module:clothing:collaborators": {
			"collaborators-table": view("collaborators"),
			"collaborators-form":  edit("collaborators"),
		},
		"module:dotations": {
			"dotations-main": view("dotations"),
		},
		"module:pharmacy:inventory": {
			"pharmacy-header":     view("pharmacy"),
			"pharmacy-search":     view("pharmacy"),
			"pharmacy-items":      view("pharmacy"),
			"pharmacy-lots":       view("pharmacy"),
			"pharmacy-low-stock":  view("pharmacy"),
			"pharmacy-orders":     view("pharmacy"),
			"pharmacy-side-panel": view("pharmacy"),
			"pharmacy-categories": view("pharmacy"),
			"pharmacy-stats":      view("pharmacy"),
		},
		"module:vehicle:inventory": {
			"vehicle-header": view("vehicle_inventory"),
			"vehicle-list":   view("vehicle_inventory"),
			"vehicle-detail": view("vehicle_inventory"),
		},
		"module:vehicle:qr": {
			"vehicle-qr-main": view("vehicle_qr"),
		},
		"module:vehicle:guide": {
			"vehicle-guide-main": view("vehicle_inventory"),
		},
		"module:remise:inventory": {
			"remise-header":  view("inventory_remise"),
			"remise-filters": view("inventory_remise"),
			"remise-items":   view("inventory_remise"),
			"remise-orders":  view("inventory_remise"),
			"remise-lots":    view("inventory_remise"),
			"remise-stats":   view("inventory_remise"),
		},
		"module:settings": {
			"settings-main": nil,
		},
		"admin:users": {
			"admin-users-main": admin(),
		},
		"admin:permissions": {
			"permissions-main": admin(),
		},
		"system:updates": {
			"updates-main": admin(),
		},
		"admin:settings": {
			"admin-settings-main": admin(),
			"admin-db-settings":   admin(),
		},
		"admin:system-config": {
			"system-config-main": admin(),
		},
		"system:about": {
			"about-main": nil,
		},
		"system:messages": {
			"messages-main": view("messages"),
		},
		"module:pdf:studio": {
			"pdf-studio-main": admin(),
		},
	}
}

// PageKeys returns every registered page key. Order is not specified.
func (r Registry) PageKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}
