package reflection_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/junioryono/pico/internal/reflection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test types
type Database struct {
	ConnectionString string
}

type Logger interface {
	Log(msg string)
}

type UserService struct {
	DB     *Database
	Logger Logger
}

func (s *UserService) SetDB(db *Database)            { s.DB = db }
func (s *UserService) SetLogger(l Logger) error      { s.Logger = l; return nil }
func (s *UserService) SetName(name string) error     { return errors.New("read only") }
func (s *UserService) SetTwo(a, b string)            {}
func (s *UserService) Set(v string)                  {}
func (s *UserService) SetMany(v string) (int, error) { return 0, nil }
func (s *UserService) Settle()                       {}

func NewDatabase(connStr string) *Database {
	return &Database{ConnectionString: connStr}
}

func NewUserService(db *Database, logger Logger) *UserService {
	return &UserService{DB: db, Logger: logger}
}

func NewUserServiceWithError(db *Database) (*UserService, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	return &UserService{DB: db}, nil
}

func TestAnalyzer_Constructor(t *testing.T) {
	a := reflection.New()

	t.Run("simple constructor", func(t *testing.T) {
		c, err := a.Constructor(NewDatabase)
		require.NoError(t, err)

		assert.Equal(t, 1, c.Arity())
		assert.Equal(t, reflect.TypeOf(""), c.Params[0])
		assert.Equal(t, reflect.TypeOf(&Database{}), c.Result)
		assert.False(t, c.HasErrorReturn)
		assert.Contains(t, c.Name, "NewDatabase")
		assert.Contains(t, c.String(), "NewDatabase(string)")
	})

	t.Run("error return", func(t *testing.T) {
		c, err := a.Constructor(NewUserServiceWithError)
		require.NoError(t, err)
		assert.True(t, c.HasErrorReturn)

		_, err = c.Call([]reflect.Value{reflect.Zero(reflect.TypeOf(&Database{}))})
		assert.EqualError(t, err, "database is required")

		v, err := c.Call([]reflect.Value{reflect.ValueOf(&Database{})})
		require.NoError(t, err)
		assert.IsType(t, &UserService{}, v.Interface())
	})

	t.Run("invalid constructors", func(t *testing.T) {
		tests := []struct {
			name string
			fn   any
		}{
			{"nil", nil},
			{"typed nil", (func() *Database)(nil)},
			{"not a function", 42},
			{"no return", func() {}},
			{"only error", func() error { return nil }},
			{"second not error", func() (*Database, string) { return nil, "" }},
			{"too many returns", func() (*Database, *Database, error) { return nil, nil, nil }},
			{"variadic", func(...string) *Database { return nil }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := a.Constructor(tt.fn)
				assert.Error(t, err)
			})
		}
	})

	t.Run("closures keep their own values", func(t *testing.T) {
		mk := func(s string) func() *Database {
			return func() *Database { return &Database{ConnectionString: s} }
		}

		c1, err := a.Constructor(mk("one"))
		require.NoError(t, err)
		c2, err := a.Constructor(mk("two"))
		require.NoError(t, err)

		v1, _ := c1.Call(nil)
		v2, _ := c2.Call(nil)
		assert.Equal(t, "one", v1.Interface().(*Database).ConnectionString)
		assert.Equal(t, "two", v2.Interface().(*Database).ConnectionString)
	})

	t.Run("concurrent analysis", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c, err := a.Constructor(NewUserService)
				assert.NoError(t, err)
				assert.Equal(t, 2, c.Arity())
			}()
		}
		wg.Wait()
	})
}

func TestZeroConstructor(t *testing.T) {
	t.Run("pointer", func(t *testing.T) {
		c := reflection.ZeroConstructor(reflect.TypeOf(&Database{}))
		assert.Equal(t, 0, c.Arity())

		v1, err := c.Call(nil)
		require.NoError(t, err)
		v2, _ := c.Call(nil)

		assert.NotNil(t, v1.Interface())
		assert.NotSame(t, v1.Interface(), v2.Interface())
	})

	t.Run("struct", func(t *testing.T) {
		c := reflection.ZeroConstructor(reflect.TypeOf(Database{}))
		v, err := c.Call(nil)
		require.NoError(t, err)
		assert.Equal(t, Database{}, v.Interface())
		assert.Contains(t, c.String(), "new(")
	})
}

func TestAnalyzer_Setters(t *testing.T) {
	a := reflection.New()

	setters := a.Setters(reflect.TypeOf(&UserService{}))
	names := make([]string, len(setters))
	for i, s := range setters {
		names[i] = s.Name
	}

	assert.Equal(t, []string{"SetDB", "SetLogger", "SetName"}, names)
	assert.Equal(t, reflect.TypeOf(&Database{}), setters[0].Param)
	assert.False(t, setters[0].HasErrorReturn)
	assert.True(t, setters[1].HasErrorReturn)

	t.Run("struct uses pointer receivers", func(t *testing.T) {
		assert.Len(t, a.Setters(reflect.TypeOf(UserService{})), 3)
	})

	t.Run("invoke", func(t *testing.T) {
		svc := &UserService{}
		db := &Database{}
		require.NoError(t, setters[0].Invoke(reflect.ValueOf(svc), reflect.ValueOf(db)))
		assert.Same(t, db, svc.DB)

		err := setters[2].Invoke(reflect.ValueOf(svc), reflect.ValueOf("x"))
		assert.EqualError(t, err, "read only")
	})

	t.Run("cached", func(t *testing.T) {
		again := a.Setters(reflect.TypeOf(&UserService{}))
		assert.Equal(t, len(setters), len(again))
	})
}

func TestHelpers(t *testing.T) {
	assert.True(t, reflection.IsConcrete(reflect.TypeOf(&Database{})))
	assert.False(t, reflection.IsConcrete(reflect.TypeOf((*Logger)(nil)).Elem()))
	assert.False(t, reflection.IsConcrete(nil))

	assert.True(t, reflection.IsNillable(reflect.TypeOf(&Database{})))
	assert.True(t, reflection.IsNillable(reflect.TypeOf([]int{})))
	assert.False(t, reflection.IsNillable(reflect.TypeOf(0)))

	v := reflection.ValueFor(nil, reflect.TypeOf(&Database{}))
	assert.True(t, v.IsNil())
}
