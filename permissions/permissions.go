package permissions

import (
	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v2"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// Action - type int
type Action int

// A list of actions that can be performed
const (
	// Read-only
	Read Action = iota
	// Write
	Write
)

// Corresponding string value for an Action
var actionStr = []string{"read", "write"}

// String function will return the english name of the Action
func (a Action) String() string {
	return actionStr[a]
}

// sysAdminRole is the casbin role granted to system administrators. Admins
// are the only users allowed to mutate the game catalog.
const sysAdminRole = "sysadmin"

const (
	// PolicyUser is the index of 'user' in a casbin policy tuple
	PolicyUser = iota
	// PolicyResource is the index of 'resource' in a casbin policy tuple
	PolicyResource
	// PolicyAction is the index of 'action' in a casbin policy tuple
	PolicyAction
)

// Permissions struct contains a data object for interfacing with permissions db
type Permissions struct {
	data *permissionsObj
}

// Private permission data objects
type permissionsObj struct {
	adapter  *gormadapter.Adapter
	enforcer *casbin.Enforcer
}

// Global permission object
var gPermissionsObj *permissionsObj

// Init initializes permissions with an existing database connection.
// sysAdmin argument can contain a list of usernames separated by comma.
func (p *Permissions) Init(db *gorm.DB, sysAdmin string) error {

	// check if db connection and permission policy has been initialized or not
	if gPermissionsObj != nil {
		p.data = gPermissionsObj
		return p.Reload(sysAdmin)
	}

	adapter, _ := gormadapter.NewAdapterByDB(db)
	enforcer, _ := casbin.NewEnforcer("permissions/policy.conf", adapter)

	return p.InitWithEnforcerAndAdapter(enforcer, adapter, sysAdmin)
}

// InitWithEnforcerAndAdapter initializes permissions with a given pair of
// enforcer and adapter.
func (p *Permissions) InitWithEnforcerAndAdapter(e *casbin.Enforcer, a *gormadapter.Adapter, sysAdmin string) error {

	obj := &permissionsObj{
		enforcer: e,
		adapter:  a,
	}
	gPermissionsObj = obj
	p.data = gPermissionsObj

	return p.Reload(sysAdmin)
}

// Reload reloads all casbin data.
// sysAdmin argument can contain a list of usernames separated by comma.
func (p *Permissions) Reload(sysAdmin string) error {
	// Load the policy from DB.
	p.data.enforcer.LoadPolicy()
	p.setSystemAdmin(sysAdmin)
	return nil
}

// setSystemAdmin configures the system admin(s).
func (p *Permissions) setSystemAdmin(sysAdmin string) {
	p.data.enforcer.DeleteRole(sysAdminRole)
	if sysAdmin != "" {
		for _, u := range gz.StrToSlice(sysAdmin) {
			p.data.enforcer.AddRoleForUser(u, sysAdminRole)
		}
	}
}

// IsSystemAdmin returns a bool indicating if the given user is a system admin.
func (p *Permissions) IsSystemAdmin(user string) bool {
	result, _ := p.data.enforcer.HasRoleForUser(user, sysAdminRole)
	return result
}

// IsAuthorized checks if user has the permission to perform an action on a
// resource
func (p *Permissions) IsAuthorized(user, resource string, action Action) (bool, *gz.ErrMsg) {
	if p.IsSystemAdmin(user) {
		return true, nil
	}

	valid, err := p.data.enforcer.Enforce(user, resource, action.String())
	if !valid || err != nil {
		return false, gz.NewErrorMessage(gz.ErrorUnauthorized)
	}
	return true, nil
}

// AddPermission adds a user permission on a resource
func (p *Permissions) AddPermission(user, resource string, action Action) (bool, *gz.ErrMsg) {
	valid, err := p.data.enforcer.AddPermissionForUser(user, resource, action.String())
	if !valid || err != nil {
		return false, gz.NewErrorMessage(gz.ErrorUnexpected)
	}
	return true, nil
}

// RemovePermission removes a user permission on a resource
func (p *Permissions) RemovePermission(user, resource string, action Action) (bool, *gz.ErrMsg) {
	valid, err := p.data.enforcer.DeletePermissionForUser(user, resource, action.String())
	if !valid || err != nil {
		return false, gz.NewErrorMessage(gz.ErrorUnexpected)
	}
	return true, nil
}

// RemoveResource removes a resource and all policies involving the resource
func (p *Permissions) RemoveResource(resource string) (bool, *gz.ErrMsg) {
	// policy is formatted in casbin as (user, resource, action)
	// so the 1 in the arg below means resource.
	valid, err := p.data.enforcer.RemoveFilteredPolicy(PolicyResource, resource)
	if !valid || err != nil {
		return false, gz.NewErrorMessage(gz.ErrorUnexpected)
	}
	return true, nil
}

// RemoveUser removes a user and all policies involving the user
func (p *Permissions) RemoveUser(user string) (bool, *gz.ErrMsg) {
	p.data.enforcer.DeleteRolesForUser(user)
	p.data.enforcer.DeletePermissionsForUser(user)
	return true, nil
}

// DBTable returns the DB table used by casbin.
func (p *Permissions) DBTable() *gormadapter.CasbinRule {
	return &gormadapter.CasbinRule{}
}
