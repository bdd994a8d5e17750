package main

import (
	"context"
	"strings"
	"testing"

	"github.com/lastcallsoftware/trackeats/internal/application/catalog"
	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/auth"
	pkgerrors "github.com/lastcallsoftware/trackeats/pkg/errors"
	"github.com/lastcallsoftware/trackeats/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const foodsYAML = `
foods:
  - name: Oats
    vendor: Bob's
    servings: 10
    price: 5
    nutrition:
      calories: 150
      protein: 5
  - name: Milk
    group: Dairy
    servings: 8
    nutrition:
      calories: 120
      calcium: 300
`

func TestReadFoods(t *testing.T) {
	foods, err := readFoods(strings.NewReader(foodsYAML))
	require.NoError(t, err)
	require.Len(t, foods, 2)

	assert.Equal(t, "Oats", foods[0].Name)
	assert.Equal(t, 150.0, foods[0].Nutrition.Calories)
	assert.Equal(t, 0.5, foods[0].PricePerServing())
	assert.Equal(t, 300.0, foods[1].Nutrition.Calcium)
}

func TestReadFoods_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty"},
		{"unknown field", "foods:\n  - name: Oats\n    servings: 1\n    colour: beige\n", "colour"},
		{"invalid entries", "foods:\n  - name: Oats\n    servings: 0\n  - servings: 1\n", "entry 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readFoods(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImportFoods_StopsAtFirstFailure(t *testing.T) {
	api := testutils.NewMockBackendAPI()
	creds := auth.NewContext("tok")
	foods := []nutrition.Food{
		{Name: "Oats", Servings: 10},
		{Name: "Milk", Servings: 8},
		{Name: "Eggs", Servings: 12},
	}

	api.On("CreateFood", mock.Anything, creds, foods[0]).Return(nutrition.Food{ID: 1, Name: "Oats", Servings: 10}, nil)
	api.On("CreateFood", mock.Anything, creds, foods[1]).Return(nutrition.Food{}, pkgerrors.FromStatus(409, "Food already exists"))

	saved, err := importFoods(context.Background(), catalog.NewService(api, zap.NewNop()), creds, foods, zap.NewNop())

	assert.Equal(t, 1, saved)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 2 (Milk): Food already exists")
	api.AssertNotCalled(t, "CreateFood", mock.Anything, creds, foods[2])
}

func TestReadPassword(t *testing.T) {
	t.Setenv("TRACKEATS_PASSWORD", "")

	pw, err := readPassword(strings.NewReader("hunter22\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter22", pw)

	_, err = readPassword(strings.NewReader(""))
	assert.Error(t, err)

	t.Setenv("TRACKEATS_PASSWORD", "fromenv")
	pw, err = readPassword(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "fromenv", pw)
}
