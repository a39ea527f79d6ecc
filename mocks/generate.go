package mocks

//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/horaciomoreno100/deriv-bot-sub007/internal/strategy Strategy
//go:generate mockgen -destination=./mock_indicator.go -package=mocks github.com/horaciomoreno100/deriv-bot-sub007/internal/indicator Indicator
//go:generate mockgen -destination=./mock_indicator_registry.go -package=mocks github.com/horaciomoreno100/deriv-bot-sub007/internal/indicator IndicatorRegistry
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/datasource DataSource
//go:generate mockgen -destination=./mock_cache.go -package=mocks github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/cache Cache
//go:generate mockgen -destination=./mock_result_writer.go -package=mocks github.com/horaciomoreno100/deriv-bot-sub007/internal/backtest/engine/engine_v1/writer ResultWriter
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/horaciomoreno100/deriv-bot-sub007/pkg/marketdata/provider Provider
