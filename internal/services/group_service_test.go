package services

import (
	"testing"

	"bookkeeper/internal/testutil"
)

func TestCreateGroup(t *testing.T) {
	t.Run("owner_is_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)
		owner := testutil.CreateTestUser(t, db)

		group, err := svc.CreateGroup(owner.ID, "  Home  ")
		testutil.AssertNoError(t, err)

		if group.Name != "Home" {
			t.Errorf("expected trimmed name Home, got %q", group.Name)
		}
		ok, err := svc.IsMember(group.ID, owner.ID)
		testutil.AssertNoError(t, err)
		if !ok {
			t.Error("expected owner to be a member")
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)
		owner := testutil.CreateTestUser(t, db)

		_, err := svc.CreateGroup(owner.ID, " ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAddMember(t *testing.T) {
	t.Run("adds_once", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, owner)

		testutil.AssertNoError(t, svc.AddMember(group.ID, other.ID))
		testutil.AssertNoError(t, svc.AddMember(group.ID, other.ID))

		groups, err := svc.GetUserGroups(other.ID)
		testutil.AssertNoError(t, err)
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("expected other to belong to exactly the group, got %+v", groups)
		}
	})

	t.Run("unknown_group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.AddMember("00000000-0000-7000-8000-000000000000", user.ID)
		testutil.AssertAppError(t, err, "GROUP_NOT_FOUND")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGroupService(db)
		owner := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, owner)

		err := svc.AddMember(group.ID, "00000000-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestIsMember_outsider(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGroupService(db)
	owner := testutil.CreateTestUser(t, db)
	outsider := testutil.CreateTestUser(t, db)
	group := testutil.CreateTestGroup(t, db, owner)

	ok, err := svc.IsMember(group.ID, outsider.ID)
	testutil.AssertNoError(t, err)
	if ok {
		t.Error("expected outsider not to be a member")
	}
}

func TestListGroupIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGroupService(db)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestGroup(t, db, user)
	testutil.CreateTestGroup(t, db, user)

	ids, err := svc.ListGroupIDs()
	testutil.AssertNoError(t, err)
	if len(ids) != 2 {
		t.Errorf("expected 2 group ids, got %d", len(ids))
	}
}
