package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cardcycle/internal/importer"
	"github.com/MrJamesThe3rd/cardcycle/internal/importer/statement"
)

func TestService_Import(t *testing.T) {
	svc := importer.NewService()
	csv := "Date,Description,Amount\n2025-04-01,Coffee,-45000\n"

	txs, err := svc.Import(importer.FormatAuto, strings.NewReader(csv), statement.Options{Currency: "VND"})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	txs, err = svc.Import(importer.FormatStandard, strings.NewReader(csv), statement.Options{Currency: "VND"})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	_, err = svc.Import(importer.FormatEuropean, strings.NewReader(csv), statement.Options{})
	assert.ErrorIs(t, err, statement.ErrUnknownFormat)

	_, err = svc.Import(importer.Format("ofx"), strings.NewReader(csv), statement.Options{})
	assert.ErrorIs(t, err, statement.ErrUnknownFormat)
}

func TestService_ImportLocation(t *testing.T) {
	denver := time.FixedZone("MST", -7*60*60)
	saigon := time.FixedZone("ICT", 7*60*60)
	csv := "Date,Description,Amount\n2025-04-01,Coffee,-45000\n"

	svc := importer.NewService(importer.WithLocation(denver))

	txs, err := svc.Import(importer.FormatAuto, strings.NewReader(csv), statement.Options{Currency: "VND"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, denver), txs[0].Date)

	txs, err = svc.Import(importer.FormatAuto, strings.NewReader(csv), statement.Options{Currency: "VND", Location: saigon})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, saigon), txs[0].Date)
}
