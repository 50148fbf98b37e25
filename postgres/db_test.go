package postgres_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/messleave"
	"github.com/xy-planning-network/messleave/postgres"
	"gorm.io/gorm"
)

var testErr = errors.New("just testing")

func insertUsers(t *testing.T, db *postgres.DB, n int) []messleave.User {
	t.Helper()

	var users []messleave.User
	for i := 0; i < n; i++ {
		users = append(users, newUser(fmt.Sprintf("sub-%d", i)))
	}

	require.Nil(t, db.Create(&users))

	return users
}

// erroredDB clones the suite's connection into a chain already in error,
// for asserting finishers pass a prior error through untouched.
func erroredDB(db *postgres.DB) *postgres.DB {
	errored := postgres.NewDB(db.DB().Session(&gorm.Session{NewDB: true}))
	errored.DB().Error = testErr
	return errored
}

func (suite *DBTestSuite) TestCount() {
	// Arrange + Act - no table declared
	count, err := suite.db.Count()

	// Assert
	suite.Require().ErrorIs(err, messleave.ErrUnexpected)
	suite.Require().Zero(count)

	// Arrange + Act - a chain already in error
	count, err = erroredDB(suite.db).Count()

	// Assert
	suite.Require().ErrorIs(err, testErr)
	suite.Require().Zero(count)

	// Arrange
	_ = insertUsers(suite.T(), suite.db, 5)

	// Act
	count, err = suite.db.Model(new(messleave.User)).Count()

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(5), count)

	// Act
	count, err = suite.db.Model(new(messleave.User)).Where("email_verified = ?", true).Count()

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(5), count)
}

func (suite *DBTestSuite) TestDebug() {
	// Arrange
	_ = insertUsers(suite.T(), suite.db, 1)

	// Act
	count, err := suite.db.Debug().Model(new(messleave.User)).Count()

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(1), count)
}

func (suite *DBTestSuite) TestExec() {
	// Arrange + Act - a chain already in error
	err := erroredDB(suite.db).Exec("")

	// Assert
	suite.Require().ErrorIs(err, testErr)

	// Arrange
	users := insertUsers(suite.T(), suite.db, 3)

	// Act
	err = suite.db.Exec("UPDATE users SET name = 'exec-test' WHERE id = ?", users[0].ID)

	// Assert
	suite.Require().Nil(err)

	var actual messleave.User
	suite.Require().Nil(suite.db.Where("id = ?", users[0].ID).First(&actual))
	suite.Require().Equal("exec-test", actual.Name)

	// Act - affects no rows
	err = suite.db.Exec("UPDATE users SET name = 'exec-test' WHERE id = ?", "no-such-sub")

	// Assert
	suite.Require().ErrorIs(err, messleave.ErrNotFound)

	// Act - bad column
	err = suite.db.Exec("UPDATE users SET fake_column = 'exec-test'")

	// Assert
	suite.Require().ErrorIs(err, messleave.ErrUnexpected)
}

func (suite *DBTestSuite) TestExists() {
	// Arrange
	users := insertUsers(suite.T(), suite.db, 2)

	// Act
	actual, err := suite.db.Model(new(messleave.User)).Where("id = ?", users[0].ID).Exists()

	// Assert
	suite.Require().Nil(err)
	suite.Require().True(actual)

	// Act
	actual, err = suite.db.Model(new(messleave.User)).Where("id = ?", "no-such-sub").Exists()

	// Assert
	suite.Require().Nil(err)
	suite.Require().False(actual)
}

func (suite *DBTestSuite) TestFind() {
	// Arrange
	users := insertUsers(suite.T(), suite.db, 4)

	var actual []messleave.User

	// Act
	err := suite.db.Find(&actual)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, len(users))

	// Act - nothing matches
	err = suite.db.Where("id = ?", "no-such-sub").Find(new([]messleave.User))

	// Assert
	suite.Require().ErrorIs(err, messleave.ErrNotFound)

	// Arrange
	notAStruct := "just a string"

	// Act
	err = suite.db.Model(new(messleave.User)).Find(&notAStruct)

	// Assert
	suite.Require().ErrorIs(err, messleave.ErrNotValid)
}

func (suite *DBTestSuite) TestRaw() {
	// Arrange
	users := insertUsers(suite.T(), suite.db, 3)

	var emails []string

	// Act
	err := suite.db.Raw(&emails, "SELECT email FROM users ORDER BY email")

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(emails, len(users))

	// Arrange
	var count int64

	// Act
	err = suite.db.Raw(&count, "SELECT count(*) FROM users WHERE email_verified = ?", true)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(3), count)

	// Act - bad statement
	err = suite.db.Raw(new(int64), "SELECT FROM WHERE")

	// Assert
	suite.Require().ErrorIs(err, messleave.ErrNotValid)
}

func (suite *DBTestSuite) TestLimit() {
	// Arrange
	_ = insertUsers(suite.T(), suite.db, 5)

	var actual []messleave.User

	// Act
	err := suite.db.Model(new(messleave.User)).Limit(2).Find(&actual)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(actual, 2)

	// Act - negatives are rejected, not ignored
	err = suite.db.Model(new(messleave.User)).Limit(-1).Find(&actual)

	// Assert
	suite.Require().ErrorIs(err, messleave.ErrNotValid)
}

func (suite *DBTestSuite) TestOrder() {
	// Arrange
	users := insertUsers(suite.T(), suite.db, 3)

	var actual []messleave.User

	// Act
	err := suite.db.Order("email DESC").Find(&actual)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(users[len(users)-1].Email, actual[0].Email)
}

func (suite *DBTestSuite) TestSelect() {
	// Arrange
	_ = insertUsers(suite.T(), suite.db, 2)

	var emails []string

	// Act
	err := suite.db.Model(new(messleave.User)).Order("email").Select("email").Find(&emails)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal([]string{"sub-0@example.com", "sub-1@example.com"}, emails)
}

func (suite *DBTestSuite) TestTable() {
	// Arrange
	_ = insertUsers(suite.T(), suite.db, 3)

	// Act
	count, err := suite.db.Table("users").Count()

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(3), count)
}

func (suite *DBTestSuite) TestCommit() {
	// Arrange
	tx := suite.db.Begin()
	user := newUser("commit-sub")
	suite.Require().Nil(tx.Create(&user))

	var actual messleave.User

	// Act
	err := tx.Commit()

	// Assert
	suite.Require().Nil(err)
	suite.Require().Nil(suite.db.Where("id = ?", user.ID).First(&actual))

	// Arrange - a rolled back tx cannot commit
	tx = suite.db.Begin()
	suite.Require().Nil(tx.Rollback())

	// Act
	err = tx.Commit()

	// Assert
	suite.Require().Error(err)
}

func (suite *DBTestSuite) TestRollback() {
	// Arrange
	tx := suite.db.Begin()
	user := newUser("rollback-sub")
	suite.Require().Nil(tx.Create(&user))

	// Act
	err := tx.Rollback()

	// Assert
	suite.Require().Nil(err)
	suite.Require().ErrorIs(
		suite.db.Where("id = ?", user.ID).First(new(messleave.User)),
		messleave.ErrNotFound,
	)

	// Act - no transaction open
	err = suite.db.Rollback()

	// Assert
	suite.Require().ErrorIs(err, messleave.ErrUnexpected)
}
