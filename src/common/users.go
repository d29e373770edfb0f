package common

import (
	"context"
	"strings"
	"time"
	"vrs/src/db"
	"vrs/src/models"
	"vrs/src/models/scopes"
	"vrs/src/types"
	"vrs/src/utils"

	"gorm.io/gorm"
)

// RegisterCustomer creates a customer account from the public sign-up form.
func RegisterCustomer(ctx context.Context, body types.RegisterUserRequestBody) (*models.User, error) {
	hash, err := utils.HashSecret(body.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:         body.Name,
		Email:        strings.ToLower(body.Email),
		PasswordHash: hash,
		Role:         types.ROLE_CUSTOMER,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, writeErr(err, "email")
	}
	return &user, nil
}

// AuthenticateUser checks an email and password pair and stamps the last activity.
func AuthenticateUser(ctx context.Context, email string, password string) (*models.User, error) {
	var user models.User
	conn := db.WithContext(ctx)
	if err := conn.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, types.NewAuthError("invalid email or password")
	}
	if !utils.CheckSecret(user.PasswordHash, password) {
		return nil, types.NewAuthError("invalid email or password")
	}
	now := time.Now()
	conn.Model(&user).UpdateColumn("last_active", now)
	user.LastActive = &now
	return &user, nil
}

func ListUsers(ctx context.Context, actor types.Actor, filters types.UserQueryFilters, page types.PaginationQuery) (*Page[models.User], error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	page = normalizePage(page)
	q := db.WithContext(ctx).Model(&models.User{})
	if filters.Role != "" {
		q = q.Where("role = ?", filters.Role)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var users []models.User
	if err := q.
		Preload("Profile").
		Scopes(scopes.Paginate(page.Page, page.PerPage)).
		Order("id DESC").
		Find(&users).
		Error; err != nil {
		return nil, err
	}
	return &Page[models.User]{Data: users, Total: total, Page: page.Page, PerPage: page.PerPage}, nil
}

// GetUser returns a user. Customers can only see themselves.
func GetUser(ctx context.Context, actor types.Actor, id uint) (*models.User, error) {
	if !actor.IsStaff() && actor.ID != id {
		return nil, types.NewNotFoundError("user %d not found", id)
	}
	var user models.User
	if err := db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "user", id)
	}
	return &user, nil
}

func CreateUser(ctx context.Context, actor types.Actor, body types.CreateUserRequestBody) (*models.User, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if body.Password == "" {
		return nil, types.NewValidationError("password is required")
	}
	user := models.User{Role: types.ROLE_CUSTOMER}
	profile, err := profileFromBody(body)
	if err != nil {
		return nil, err
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyUserBody(tx, &user, body); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return writeErr(err, "email")
		}
		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser overwrites the user and profile. Empty password or PIN keep the old value.
func UpdateUser(ctx context.Context, actor types.Actor, id uint, body types.CreateUserRequestBody) (*models.User, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	profile, err := profileFromBody(body)
	if err != nil {
		return nil, err
	}
	var user models.User
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Profile").First(&user, id).Error; err != nil {
			return lookupErr(err, "user", id)
		}
		if err := applyUserBody(tx, &user, body); err != nil {
			return err
		}
		if err := tx.Omit("Profile").Save(&user).Error; err != nil {
			return writeErr(err, "email")
		}
		if user.Profile != nil {
			profile.ID = user.Profile.ID
			profile.CreatedAt = user.Profile.CreatedAt
		}
		profile.UserID = user.ID
		if err := tx.Save(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func applyUserBody(tx *gorm.DB, u *models.User, body types.CreateUserRequestBody) error {
	u.Name = body.Name
	u.Email = strings.ToLower(body.Email)
	if body.Role != "" {
		u.Role = types.Role(body.Role)
	}
	if body.Password != "" {
		hash, err := utils.HashSecret(body.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	if body.Pin != "" {
		taken, err := pinInUse(tx, body.Pin, u.ID)
		if err != nil {
			return err
		}
		if taken {
			return types.NewConflictError("PIN is already assigned to another user")
		}
		hash, err := utils.HashSecret(body.Pin)
		if err != nil {
			return err
		}
		u.PinHash = hash
	}
	return nil
}

// pinInUse reports whether a user other than exceptID already holds pin. PINs are
// salted hashes, so every holder is checked.
func pinInUse(tx *gorm.DB, pin string, exceptID uint) (bool, error) {
	var holders []models.User
	if err := tx.
		Select("id", "pin_hash").
		Where("pin_hash <> '' AND id <> ?", exceptID).
		Find(&holders).
		Error; err != nil {
		return false, err
	}
	for _, h := range holders {
		if utils.CheckSecret(h.PinHash, pin) {
			return true, nil
		}
	}
	return false, nil
}

func profileFromBody(body types.CreateUserRequestBody) (*models.Profile, error) {
	birthDate, err := parseOptionalDate(body.BirthDate, "birth date")
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		FirstName:   utils.StringPtr(body.FirstName),
		LastName:    utils.StringPtr(body.LastName),
		PhoneNumber: utils.StringPtr(body.PhoneNumber),
		Address:     utils.StringPtr(body.Address),
		Gender:      utils.StringPtr(body.Gender),
		BirthDate:   birthDate,
	}, nil
}

func DeleteUser(ctx context.Context, actor types.Actor, id uint) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return types.NewValidationError("you cannot delete your own account")
	}
	res := db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewNotFoundError("user %d not found", id)
	}
	return nil
}
