package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"bookkeeper/internal/division"
	"bookkeeper/internal/models"
	"bookkeeper/internal/money"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Day returns the calendar day y-m-d as UTC midnight.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestGroup creates a group with the given members.
func CreateTestGroup(t *testing.T, db *gorm.DB, members ...*models.User) *models.Group {
	t.Helper()

	group := &models.Group{Name: fmt.Sprintf("Test Group %d", nextID())}
	for _, m := range members {
		group.Users = append(group.Users, models.GroupUser{UserID: m.ID})
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateTestSource creates a source in the group where members[i] holds
// shares[i]. Missing shares default to one.
func CreateTestSource(t *testing.T, db *gorm.DB, groupID string, members []*models.User, shares ...int) *models.Source {
	t.Helper()

	source := &models.Source{GroupID: groupID, Name: fmt.Sprintf("Test Source %d", nextID())}
	for i, m := range members {
		share := 1
		if i < len(shares) {
			share = shares[i]
		}
		source.Users = append(source.Users, models.SourceUser{UserID: m.ID, Share: share, Position: i})
	}
	if err := db.Create(source).Error; err != nil {
		t.Fatalf("failed to create test source: %v", err)
	}
	return source
}

// CreateTestExpense creates a confirmed expense of the given sum on date,
// divided by the shares of source.
func CreateTestExpense(t *testing.T, db *gorm.DB, source *models.Source, userID, sum string, date time.Time) *models.Expense {
	t.Helper()
	return CreateTestExpenseOfType(t, db, source, userID, models.ExpenseTypeExpense, sum, date)
}

// CreateTestExpenseOfType creates an expense of the given type.
func CreateTestExpenseOfType(t *testing.T, db *gorm.DB, source *models.Source, userID string, typ models.ExpenseType, sum string, date time.Time) *models.Expense {
	t.Helper()

	amount := money.MustFrom(sum)
	items, err := division.Determine(division.Input{Type: typ, Sum: amount, UserID: userID}, source)
	if err != nil {
		t.Fatalf("failed to determine test division: %v", err)
	}

	expense := &models.Expense{
		GroupID:   source.GroupID,
		UserID:    userID,
		SourceID:  source.ID,
		Type:      typ,
		Title:     fmt.Sprintf("Test Expense %d", nextID()),
		Sum:       amount,
		Date:      date,
		Confirmed: true,
		Division:  items,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
