package accred

import (
	"errors"
	"fmt"
	"time"

	"logibot/model"

	"gorm.io/gorm"
)

// Validity windows for granted accreditations. A tier grant above External
// lasts RoleValidity from the moment it is granted; unit memberships last
// UnitValidity. External itself never expires.
const (
	RoleValidity = 10950 * time.Hour // 456.25 days
	UnitValidity = 4380 * time.Hour  // 182.5 days
)

// ErrUnregistered is returned when no user record exists. It is distinct
// from an insufficient tier and callers must surface it differently.
var ErrUnregistered = errors.New("user is not registered")

// Decision is the outcome of a privilege check.
type Decision int

const (
	Unregistered Decision = iota
	Insufficient
	Sufficient
)

// Engine owns tier reads and writes against the user store.
type Engine struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db, now: time.Now}
}

// Register creates the user record on first contact, at the lowest tier.
// Registering an existing user is a no-op.
func (e *Engine) Register(userID int64, firstName, lastName, username string) error {
	user := model.User{
		ID:        userID,
		FirstName: firstName,
		LastName:  lastName,
		Username:  username,
		Accred:    int(External),
	}
	if err := e.DB.FirstOrCreate(&user, model.User{ID: userID}).Error; err != nil {
		return fmt.Errorf("register user %d: %w", userID, err)
	}
	return nil
}

// Forget removes the user record and its unit memberships.
func (e *Engine) Forget(userID int64) error {
	if err := e.DB.Where("user_id = ?", userID).Delete(&model.UnitMembership{}).Error; err != nil {
		return fmt.Errorf("forget user %d units: %w", userID, err)
	}
	if err := e.DB.Delete(&model.User{}, userID).Error; err != nil {
		return fmt.Errorf("forget user %d: %w", userID, err)
	}
	return nil
}

// Exists reports whether a user record exists.
func (e *Engine) Exists(userID int64) (bool, error) {
	var count int64
	if err := e.DB.Model(&model.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup user %d: %w", userID, err)
	}
	return count > 0, nil
}

// TierOf returns the user's current tier, or ErrUnregistered.
func (e *Engine) TierOf(userID int64) (Tier, error) {
	var user model.User
	err := e.DB.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return External, ErrUnregistered
	}
	if err != nil {
		return External, fmt.Errorf("lookup user %d: %w", userID, err)
	}
	tier, err := FromValue(user.Accred)
	if err != nil {
		return External, fmt.Errorf("user %d: %w", userID, err)
	}
	return tier, nil
}

// HasPrivilege compares the user's tier against required. Unregistered
// users are reported as such, never as merely insufficient.
func (e *Engine) HasPrivilege(userID int64, required Tier) (Decision, error) {
	tier, err := e.TierOf(userID)
	if errors.Is(err, ErrUnregistered) {
		return Unregistered, nil
	}
	if err != nil {
		return Unregistered, err
	}
	if tier.Compare(required) < 0 {
		return Insufficient, nil
	}
	return Sufficient, nil
}

// Grant sets the user's tier and recomputes its expiry. Tiers above
// External expire RoleValidity from now; External never expires. The
// tier and expiry are written in a single update.
func (e *Engine) Grant(userID int64, tier Tier) error {
	if !tier.Valid() {
		return fmt.Errorf("grant user %d: invalid tier %d", userID, int(tier))
	}
	// The expiry entry must be an untyped nil to write NULL; a typed
	// nil *time.Time would leave the previous expiry in place.
	updates := map[string]any{"accred": int(tier), "expires": nil}
	if tier > External {
		updates["expires"] = e.now().Add(RoleValidity)
	}
	result := e.DB.Model(&model.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("grant user %d: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUnregistered
	}
	return nil
}

// AddUnit attaches a unit membership expiring UnitValidity from now.
func (e *Engine) AddUnit(userID int64, unit string) error {
	membership := model.UnitMembership{
		UserID:  userID,
		Unit:    unit,
		Expires: e.now().Add(UnitValidity),
	}
	if err := e.DB.Create(&membership).Error; err != nil {
		return fmt.Errorf("add unit %q to user %d: %w", unit, userID, err)
	}
	return nil
}

// SweepExpired downgrades every user whose expiry has passed to the
// lowest tier and clears the expiry, and drops expired unit memberships.
// Each row is updated independently; running the sweep twice, or
// concurrently with tier reads and writes, is safe.
func (e *Engine) SweepExpired(now time.Time) error {
	err := e.DB.Model(&model.User{}).
		Where("expires IS NOT NULL AND expires < ?", now).
		Updates(map[string]any{"accred": int(External), "expires": nil}).Error
	if err != nil {
		return fmt.Errorf("expire accreditations: %w", err)
	}
	err = e.DB.Where("expires < ?", now).Delete(&model.UnitMembership{}).Error
	if err != nil {
		return fmt.Errorf("expire unit memberships: %w", err)
	}
	return nil
}

// UsersAtOrAbove returns every user whose tier is at least the given one.
// Used to enumerate the validators for a tier-grant request.
func (e *Engine) UsersAtOrAbove(tier Tier) ([]model.User, error) {
	var users []model.User
	if err := e.DB.Where("accred >= ?", int(tier)).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users at or above %v: %w", tier, err)
	}
	return users, nil
}
