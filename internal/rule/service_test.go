package rule_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/cardcycle/internal/category"
	"github.com/MrJamesThe3rd/cardcycle/internal/rule"
	"github.com/MrJamesThe3rd/cardcycle/internal/transaction"
)

func TestService_Learn(t *testing.T) {
	type testCase struct {
		name      string
		pattern   string
		setupMock func(repo *rule.MockRepository, cats *rule.MockCategoryReader)
		wantErr   error
	}

	userID := uuid.New()
	catID := uuid.New()

	tests := []testCase{
		{
			name:    "Success",
			pattern: "  GRAB*  ",
			setupMock: func(repo *rule.MockRepository, cats *rule.MockCategoryReader) {
				cats.EXPECT().Get(gomock.Any(), userID, catID).Return(&category.Category{ID: catID}, nil)
				repo.EXPECT().
					CreateRule(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r *rule.Rule) error {
						assert.Equal(t, "GRAB*", r.Pattern)
						r.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:    "BlankPattern",
			pattern: "   ",
			wantErr: rule.ErrInvalidPattern,
		},
		{
			name:    "UnknownCategory",
			pattern: "GRAB",
			setupMock: func(_ *rule.MockRepository, cats *rule.MockCategoryReader) {
				cats.EXPECT().Get(gomock.Any(), userID, catID).Return(nil, category.ErrNotFound)
			},
			wantErr: category.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := rule.NewMockRepository(ctrl)
			cats := rule.NewMockCategoryReader(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, cats)
			}

			svc := rule.NewService(repo, cats)
			got, err := svc.Learn(context.Background(), userID, tt.pattern, catID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, catID, got.CategoryID)
		})
	}
}

func TestService_Suggest_BlankSkipsLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := rule.NewService(rule.NewMockRepository(ctrl), rule.NewMockCategoryReader(ctrl))

	got, err := svc.Suggest(context.Background(), uuid.New(), "  ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_Apply(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()
	food := uuid.New()
	preset := uuid.New()

	repo := rule.NewMockRepository(ctrl)
	repo.EXPECT().FindMatch(gomock.Any(), userID, "GRAB FOOD HCMC").Return(&food, nil)
	repo.EXPECT().FindMatch(gomock.Any(), userID, "Coffee").Return(nil, nil)

	params := []transaction.CreateParams{
		{RawDescription: "GRAB FOOD HCMC"},
		{Description: "Coffee"},
		{RawDescription: "SHOPEE", CategoryID: &preset},
	}

	svc := rule.NewService(repo, rule.NewMockCategoryReader(ctrl))
	require.NoError(t, svc.Apply(context.Background(), userID, params))

	require.NotNil(t, params[0].CategoryID)
	assert.Equal(t, food, *params[0].CategoryID)
	assert.Nil(t, params[1].CategoryID)
	assert.Equal(t, preset, *params[2].CategoryID)
}
