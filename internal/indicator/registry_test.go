package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-pilot/internal/types"
	"github.com/rxtech-lab/argo-pilot/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// stubIndicator is a minimal indicator for exercising the registry
type stubIndicator struct {
	name    types.IndicatorType
	columns [][]float64
	err     error
}

func (s *stubIndicator) Name() types.IndicatorType { return s.name }

func (s *stubIndicator) Lookback() int { return 1 }

func (s *stubIndicator) Config(params ...any) error { return nil }

func (s *stubIndicator) Calculate(candles []types.MarketData) ([][]float64, error) {
	return s.columns, s.err
}

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestRegisterAndGet() {
	registry := NewIndicatorRegistry()
	ind := &stubIndicator{name: "stub"}

	suite.NoError(registry.RegisterIndicator(ind))

	got, err := registry.GetIndicator("stub")
	suite.NoError(err)
	suite.Equal(ind, got)
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	registry := NewIndicatorRegistry()
	suite.NoError(registry.RegisterIndicator(&stubIndicator{name: "stub"}))

	err := registry.RegisterIndicator(&stubIndicator{name: "stub"})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *RegistryTestSuite) TestGetMissing() {
	registry := NewIndicatorRegistry()

	_, err := registry.GetIndicator("missing")
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestRemove() {
	registry := NewIndicatorRegistry()
	suite.NoError(registry.RegisterIndicator(&stubIndicator{name: "stub"}))

	suite.NoError(registry.RemoveIndicator("stub"))
	suite.Empty(registry.ListIndicators())
	suite.True(errors.HasCode(registry.RemoveIndicator("stub"), errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestDefaultRegistry() {
	registry := NewDefaultRegistry()

	suite.Equal([]types.IndicatorType{
		types.IndicatorTypeADX,
		types.IndicatorTypeATR,
		types.IndicatorTypeEMA20,
		types.IndicatorTypeEMA200,
		types.IndicatorTypeEMA50,
		types.IndicatorTypeMACD,
		types.IndicatorTypeRSI,
	}, registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestWarmUpIsLongestLookback() {
	suite.Equal(0, NewIndicatorRegistry().WarmUp())
	suite.Equal(200, NewDefaultRegistry().WarmUp())

	registry := NewIndicatorRegistry()
	suite.NoError(registry.RegisterIndicator(NewRSI()))
	suite.NoError(registry.RegisterIndicator(NewMACD()))
	suite.Equal(26, registry.WarmUp())
}
