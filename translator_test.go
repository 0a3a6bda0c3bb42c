package typical_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	typical "github.com/ducminhgd/typical"
)

type fullUser struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type publicUser struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestTranslate_StructToStruct(t *testing.T) {
	r := typical.NewResolver()
	got, err := r.Translate(fullUser{ID: 7, Name: "ada", Email: "a@b"}, typical.TypeOf[publicUser]())
	require.NoError(t, err)
	pu, ok := got.(publicUser)
	require.True(t, ok, "expected publicUser, got %T", got)
	assert.Equal(t, publicUser{ID: 7, Name: "ada"}, pu)
}

func TestTranslate_ExtraSourceFieldsAreDropped(t *testing.T) {
	r := typical.NewResolver()
	got, err := r.Translate(fullUser{ID: 1, Name: "n", Email: "x@y"}, typical.TypeOf[publicUser]())
	require.NoError(t, err)
	assert.Equal(t, publicUser{ID: 1, Name: "n"}, got)
}

type privateUser struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (privateUser) SerdeFlags() typical.SerdeFlags {
	return typical.SerdeFlags{
		Fields:  map[string]string{"name": "handle"},
		Exclude: []string{"name"},
	}
}

func TestTranslate_TargetRenamedAndExcludedFieldStillFills(t *testing.T) {
	r := typical.NewResolver()
	got, err := r.Translate(fullUser{ID: 3, Name: "ada", Email: "a@b"}, typical.TypeOf[privateUser]())
	require.NoError(t, err)
	pu, ok := got.(privateUser)
	require.True(t, ok, "expected privateUser, got %T", got)
	assert.Equal(t, privateUser{ID: 3, Name: "ada"}, pu)
}

func TestTranslate_ScalarSourceFails(t *testing.T) {
	r := typical.NewResolver()
	_, err := r.Translate(42, typical.TypeOf[publicUser]())
	require.Error(t, err)
	iss, ok := typical.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, typical.CodeNotTranslatable, iss[0].Code)
}

func TestTranslate_ScalarTargetFails(t *testing.T) {
	r := typical.NewResolver()
	_, err := r.Translate(fullUser{ID: 1}, typical.Int())
	require.Error(t, err)
	iss, ok := typical.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, typical.CodeNotTranslatable, iss[0].Code)
}
