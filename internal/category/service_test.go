package category_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cardcycle/internal/category"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		input     string
		setupMock func(m *category.MockRepository)
		wantName  string
		wantErr   error
	}

	tests := []testCase{
		{
			name:  "TrimsName",
			input: "  Groceries ",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					CreateCategory(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *category.Category) error {
						c.ID = uuid.New()
						return nil
					})
			},
			wantName: "Groceries",
		},
		{
			name:    "Blank",
			input:   "   ",
			wantErr: category.ErrInvalidName,
		},
		{
			name:  "Duplicate",
			input: "Food",
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					CreateCategory(gomock.Any(), gomock.Any()).
					Return(category.ErrDuplicate)
			},
			wantErr: category.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := category.NewService(repo)
			got, err := svc.Create(context.Background(), uuid.New(), tt.input, "", "")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestService_Names(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	food, rent := uuid.New(), uuid.New()

	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().ListCategories(gomock.Any(), userID).Return([]*category.Category{
		{ID: food, Name: "Food"},
		{ID: rent, Name: "Rent"},
	}, nil)

	names, err := category.NewService(repo).Names(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{food: "Food", rent: "Rent"}, names)
}
