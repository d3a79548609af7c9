package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/viney-shih/goroutines"

	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/base/log"
	"github.com/anon-exchange/goapi/base/tracker"
	bValidator "github.com/anon-exchange/goapi/base/validator"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/listing"
	mmiddleware "github.com/anon-exchange/goapi/middleware"
	"github.com/anon-exchange/goapi/service/chain"
	"github.com/anon-exchange/goapi/service/semaphore"
	serviceWallet "github.com/anon-exchange/goapi/service/wallet"
	identity_delivery "github.com/anon-exchange/goapi/stores/identity/delivery/http"
	identity_usecase "github.com/anon-exchange/goapi/stores/identity/usecase"
	listing_delivery "github.com/anon-exchange/goapi/stores/listing/delivery/http"
	listing_repository "github.com/anon-exchange/goapi/stores/listing/repository"
	listing_usecase "github.com/anon-exchange/goapi/stores/listing/usecase"
)

func init() {
	pflag.String("config", "infra/configs/core/config.yaml", "path to config file")
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(err)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigFile(viper.GetString("config"))
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.SetDebug()
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middL.CORS)
	e.Validator = bValidator.NewCustomValidator(validator.New())

	// sessionCtx scopes everything: cancelling it tears the session down and
	// orphans any in-flight confirmation waits
	sessionCtx, cancelSession := bCtx.WithCancel(bCtx.Background())

	activeNetwork := viper.GetString("activeNetwork")
	networkInfo := viper.Sub(fmt.Sprintf("networks.%s", activeNetwork))
	chainId := networkInfo.GetInt64("chainId")
	wsUrl := networkInfo.GetString("wsUrl")
	rpcUrl := networkInfo.GetString("rpcUrl")

	contractInfo := viper.Sub(fmt.Sprintf("contract.%s", activeNetwork))
	exchangeContract := domain.Address(contractInfo.GetString("exchange")).ToLower()
	exchangeStartBlock := contractInfo.GetUint64("startBlock")

	sessionAddress := domain.Address(viper.GetString("session.address")).ToLower()
	followDistance := viper.GetUint64("tracker.followDistance")
	reconcileInterval := viper.GetDuration("reconciler.interval")
	filterByLister := viper.GetBool("reconciler.filterByLister")

	sessionCtx.WithFields(log.Fields{
		"network":          activeNetwork,
		"chainId":          chainId,
		"wsUrl":            wsUrl,
		"rpcUrl":           rpcUrl,
		"exchangeContract": exchangeContract,
		"sessionAddress":   sessionAddress,
	}).Info("config")

	sessionCtx.Info("connecting eth clients")
	wsClient, rpcEthClient, rpcClient := initEthClient(sessionCtx, wsUrl, rpcUrl)

	errCh := make(chan error, 10)

	// repos
	registry := listing_repository.NewRegistry()

	// services
	chainReader := chain.NewReader(&chain.ReaderCfg{
		ChainId:         domain.ChainId(chainId),
		Client:          rpcEthClient,
		ExchangeAddress: exchangeContract,
		StartBlock:      exchangeStartBlock,
	})
	submitter := serviceWallet.NewNodeSubmitter(&serviceWallet.NodeSubmitterCfg{
		Rpc:  rpcClient,
		From: sessionAddress,
	})
	confirmer := serviceWallet.NewConfirmer(&serviceWallet.ConfirmerCfg{
		Client: rpcEthClient,
	})

	// usecases
	identityManager := identity_usecase.NewManager(semaphore.NewDeriver())
	pool := goroutines.NewPool(32,
		goroutines.WithTaskQueueLength(1024),
		goroutines.WithPreAllocWorkers(8),
	)
	lifecycle := listing_usecase.NewLifecycle(&listing_usecase.LifecycleCfg{
		ChainId:         domain.ChainId(chainId),
		ExchangeAddress: exchangeContract,
		SessionAddress:  sessionAddress,
		SessionCtx:      sessionCtx,
		Registry:        registry,
		ChainReader:     chainReader,
		Submitter:       submitter,
		Confirmer:       confirmer,
		IdentityManager: identityManager,
		Pool:            pool,
	})

	var filter *listing.SnapshotFilter
	if filterByLister {
		lister := sessionAddress
		filter = &listing.SnapshotFilter{Lister: &lister}
	}
	reconciler := listing_usecase.NewReconciler(&listing_usecase.ReconcilerCfg{
		Interval:    reconcileInterval,
		Registry:    registry,
		ChainReader: chainReader,
		Filter:      filter,
	})

	// the event path feeds the same reconciler, observed events update tracked
	// keys without waiting for the next poll
	listingHandler := tracker.NewListingEventHandler(&tracker.ListingEventHandlerCfg{
		ChainId:      chainId,
		EventUseCase: reconciler,
	})
	eventTracker := tracker.NewEventTracker(&tracker.EventTrackerCfg{
		ChainId:            chainId,
		CurrentBlockGetter: rpcEthClient,
		WsClient:           wsClient,
		RpcClient:          rpcEthClient,
		ContractAddress:    common.HexToAddress(exchangeContract.ToLowerStr()),
		EventHandl:         listingHandler,
		ErrorCh:            errCh,
		FollowDistance:     followDistance,
	})

	sessionCtx.Info("starting workers")
	reconciler.Start(sessionCtx)
	eventTracker.Start(sessionCtx)

	go func() {
		for res := range lifecycle.Results() {
			if res.Err != nil {
				sessionCtx.WithFields(log.Fields{
					"err":      res.Err,
					"contract": res.Id.ContractAddress,
					"tokenId":  res.Id.TokenId,
					"action":   res.Action,
					"txHash":   res.TxHash,
				}).Warn("action failed")
				continue
			}
			sessionCtx.WithFields(log.Fields{
				"contract": res.Id.ContractAddress,
				"tokenId":  res.Id.TokenId,
				"action":   res.Action,
				"txHash":   res.TxHash,
			}).Info("action confirmed")
		}
	}()

	// deliveries
	listing_delivery.New(e, registry, lifecycle)
	identity_delivery.New(e, identityManager)

	e.GET("/healthcheck", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
	})

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case sig := <-quit:
		log.Log().WithField("signal", sig).Info("received signal")
	case err := <-errCh:
		log.Log().WithField("err", err).Error("worker error")
	}

	// teardown order matters: cancel the session first so pending
	// confirmations are discarded, then stop taking requests
	cancelSession()

	shutdownCtx, cancel := bCtx.WithTimeout(bCtx.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}

	go func() {
		for range errCh {
		}
	}()
	reconciler.Wait()
	eventTracker.Wait()
	pool.Release()
}

func initEthClient(ctx bCtx.Ctx, wsUrl, rpcUrl string) (*ethclient.Client, *ethclient.Client, *rpc.Client) {
	wsClient, err := ethclient.DialContext(ctx, wsUrl)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"url": wsUrl,
		}).Panic("failed to connect ws rpc")
	}

	rawRpc, err := rpc.DialContext(ctx, rpcUrl)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"url": rpcUrl,
		}).Panic("failed to connect rpc")
	}

	return wsClient, ethclient.NewClient(rawRpc), rawRpc
}
