package mocks

//go:generate mockgen -destination=./mock_gateway.go -package=mocks github.com/rxtech-lab/argo-pilot/internal/gateway Gateway
//go:generate mockgen -destination=./mock_engine.go -package=mocks github.com/rxtech-lab/argo-pilot/internal/engine TradingEngine
