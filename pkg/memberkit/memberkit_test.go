package memberkit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"go.llib.dev/subjectkit/pkg/errorkit"
	"go.llib.dev/subjectkit/pkg/memberkit"
	"go.llib.dev/testcase/assert"
	"go.llib.dev/testcase/random"
)

const ErrStorageGone errorkit.Error = "storage is gone"

type Account struct {
	ID      string
	Name    string
	balance int
}

func (a *Account) Deposit(amount int) int {
	a.balance += amount
	return a.balance
}

func (a *Account) Balance() int { return a.balance }

func (a *Account) Close() error { return ErrStorageGone }

func (a *Account) Rename(name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	a.Name = name
	return nil
}

func (a *Account) Describe(labels ...string) (int, error) {
	return len(labels), nil
}

type AmbiguousMembers struct {
	Value string
	VALUE string
}

func TestTableFor_cachesPerType(t *testing.T) {
	tbl1 := memberkit.TableFor(memberkit.TableOf(Account{}).Type)
	tbl2 := memberkit.TableOf(&Account{})
	assert.Equal(t, tbl1, tbl2)
}

func TestTable_LookupField(t *testing.T) {
	tbl := memberkit.TableOf(Account{})

	t.Run("exact name", func(t *testing.T) {
		sf, err := tbl.LookupField("Name")
		assert.NoError(t, err)
		assert.Equal(t, "Name", sf.Name)
	})
	t.Run("case-insensitive fallback", func(t *testing.T) {
		sf, err := tbl.LookupField("name")
		assert.NoError(t, err)
		assert.Equal(t, "Name", sf.Name)
	})
	t.Run("unexported field", func(t *testing.T) {
		sf, err := tbl.LookupField("balance")
		assert.NoError(t, err)
		assert.Equal(t, "balance", sf.Name)
	})
	t.Run("unknown name", func(t *testing.T) {
		_, err := tbl.LookupField("Nope")
		assert.ErrorIs(t, err, memberkit.ErrMemberNotFound)
	})
	t.Run("ambiguous case-insensitive match", func(t *testing.T) {
		atbl := memberkit.TableOf(AmbiguousMembers{})
		_, err := atbl.LookupField("value")
		assert.ErrorIs(t, err, memberkit.ErrAmbiguousMember)
	})
	t.Run("exact name wins over case-insensitive ambiguity", func(t *testing.T) {
		atbl := memberkit.TableOf(AmbiguousMembers{})
		sf, err := atbl.LookupField("VALUE")
		assert.NoError(t, err)
		assert.Equal(t, "VALUE", sf.Name)
	})
}

func TestTable_LookupMethod(t *testing.T) {
	tbl := memberkit.TableOf(&Account{})

	t.Run("exact name", func(t *testing.T) {
		m, err := tbl.LookupMethod("Deposit")
		assert.NoError(t, err)
		assert.Equal(t, "Deposit", m.Name)
	})
	t.Run("case-insensitive fallback", func(t *testing.T) {
		m, err := tbl.LookupMethod("deposit")
		assert.NoError(t, err)
		assert.Equal(t, "Deposit", m.Name)
	})
	t.Run("unknown name", func(t *testing.T) {
		_, err := tbl.LookupMethod("Withdraw")
		assert.ErrorIs(t, err, memberkit.ErrMemberNotFound)
	})
}

func TestGet(t *testing.T) {
	rnd := random.New(random.CryptoSeed{})

	t.Run("exported field from value", func(t *testing.T) {
		name := rnd.StringNC(8, random.CharsetAlpha())
		got, err := memberkit.Get(Account{Name: name}, "Name")
		assert.NoError(t, err)
		assert.Equal[any](t, name, got)
	})
	t.Run("unexported field from pointer", func(t *testing.T) {
		got, err := memberkit.Get(&Account{balance: 42}, "balance")
		assert.NoError(t, err)
		assert.Equal[any](t, 42, got)
	})
	t.Run("unknown field", func(t *testing.T) {
		_, err := memberkit.Get(Account{}, "Nope")
		assert.ErrorIs(t, err, memberkit.ErrMemberNotFound)
	})
	t.Run("non struct target", func(t *testing.T) {
		_, err := memberkit.Get(42, "Nope")
		assert.ErrorIs(t, err, memberkit.ErrInvalidTarget)
	})
}

func TestSet(t *testing.T) {
	t.Run("exported field", func(t *testing.T) {
		var acc Account
		assert.NoError(t, memberkit.Set(&acc, "Name", "Kaya"))
		assert.Equal(t, "Kaya", acc.Name)
	})
	t.Run("unexported field", func(t *testing.T) {
		var acc Account
		assert.NoError(t, memberkit.Set(&acc, "balance", 128))
		assert.Equal(t, 128, acc.balance)
	})
	t.Run("value instead of pointer", func(t *testing.T) {
		err := memberkit.Set(Account{}, "Name", "Kaya")
		assert.ErrorIs(t, err, memberkit.ErrInvalidTarget)
	})
	t.Run("type mismatch", func(t *testing.T) {
		var acc Account
		err := memberkit.Set(&acc, "Name", 42)
		assert.ErrorIs(t, err, memberkit.ErrNotAssignable)
	})
	t.Run("nil for non nilable field", func(t *testing.T) {
		var acc Account
		err := memberkit.Set(&acc, "balance", nil)
		assert.ErrorIs(t, err, memberkit.ErrNotAssignable)
	})
}

func TestCall(t *testing.T) {
	t.Run("invokes with positional arguments", func(t *testing.T) {
		acc := &Account{}
		results, err := memberkit.Call(acc, "Deposit", 10)
		require.NoError(t, err)
		require.Equal(t, []any{10}, results)
		require.Equal(t, 10, acc.Balance())
	})
	t.Run("value receiver gets an addressable copy", func(t *testing.T) {
		results, err := memberkit.Call(Account{balance: 7}, "Balance")
		require.NoError(t, err)
		require.Equal(t, []any{7}, results)
	})
	t.Run("variadic arguments", func(t *testing.T) {
		results, err := memberkit.Call(&Account{}, "Describe", "a", "b", "c")
		require.NoError(t, err)
		require.Equal(t, 3, results[0])
		require.Nil(t, results[1])
	})
	t.Run("wrong argument count", func(t *testing.T) {
		_, err := memberkit.Call(&Account{}, "Deposit")
		require.ErrorIs(t, err, memberkit.ErrNotAssignable)
	})
	t.Run("non assignable argument", func(t *testing.T) {
		_, err := memberkit.Call(&Account{}, "Deposit", "ten")
		require.ErrorIs(t, err, memberkit.ErrNotAssignable)
	})
	t.Run("unknown method", func(t *testing.T) {
		_, err := memberkit.Call(&Account{}, "Withdraw", 1)
		require.ErrorIs(t, err, memberkit.ErrMemberNotFound)
	})
}

func TestCallIgnoring(t *testing.T) {
	t.Run("matching failure is swallowed without results", func(t *testing.T) {
		results, err := memberkit.CallIgnoring(&Account{}, "Close", ErrStorageGone)
		assert.NoError(t, err)
		assert.Nil(t, results)
	})
	t.Run("different failure is returned unchanged", func(t *testing.T) {
		_, err := memberkit.CallIgnoring(&Account{}, "Close", errors.New("other"))
		assert.ErrorIs(t, err, ErrStorageGone)
	})
	t.Run("success returns results without the trailing error slot", func(t *testing.T) {
		results, err := memberkit.CallIgnoring(&Account{}, "Describe", ErrStorageGone, "x")
		assert.NoError(t, err)
		assert.Equal(t, []any{1}, results)
	})
	t.Run("method without error result is passed through", func(t *testing.T) {
		results, err := memberkit.CallIgnoring(&Account{}, "Deposit", ErrStorageGone, 5)
		assert.NoError(t, err)
		assert.Equal(t, []any{5}, results)
	})
	t.Run("failure from the invoked method surfaces when no sentinel matches", func(t *testing.T) {
		_, err := memberkit.CallIgnoring(&Account{}, "Rename", ErrStorageGone, "")
		assert.Error(t, err)
		assert.Contain(t, err.Error(), "empty name")
	})
}
