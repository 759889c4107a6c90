package main

//
// Running the medium
//

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/ooni/medium/internal/impair"
	"github.com/ooni/medium/internal/medium"
	"github.com/ooni/medium/internal/model"
	"github.com/ooni/medium/internal/runtimex"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// run runs the medium until control contains the quit command or ctx
// is done. Fatal setup errors are returned wrapping [runtimex.ErrFatal].
func run(ctx context.Context, logger model.Logger, config *medium.Config, control io.Reader) (err error) {
	defer runtimex.Recover(&err)

	impairConfig := runtimex.Try1(config.ImpairConfig())

	source := newRandSource(logger, config.Seed)

	var dumper medium.PacketDumper
	if config.PCAPFile != "" {
		pcapDumper := runtimex.Try1(medium.CreatePCAPDumper(config.PCAPFile))
		defer pcapDumper.Close()
		logger.Infof("writing forwarded packets to %s", config.PCAPFile)
		dumper = pcapDumper
	}

	if config.PrometheusAddress != "" {
		listener, err := net.Listen("tcp", config.PrometheusAddress)
		runtimex.PanicOnError(err, "cannot listen for prometheus")
		promMux := http.NewServeMux()
		promMux.Handle("/metrics", promhttp.Handler())
		promSrv := &http.Server{Handler: promMux}
		go promSrv.Serve(listener)
		defer shutdown(promSrv)
		logger.Infof("serving prometheus metrics at http://%s/metrics", listener.Addr().String())
	}

	udpListener := medium.NewListenConfig(config.RecvBufferSize)
	senderSide, err := medium.NewEndpoint(
		ctx, udpListener, "sender side", config.SenderSideAddress, config.ReceiverAddress)
	runtimex.PanicOnError(err, "cannot create the sender side endpoint")
	receiverSide, err := medium.NewEndpoint(
		ctx, udpListener, "receiver side", config.ReceiverSideAddress, config.SenderAddress)
	if err != nil {
		senderSide.Close()
	}
	runtimex.PanicOnError(err, "cannot create the receiver side endpoint")

	relay := &medium.Relay{
		Control:       control,
		Debug:         config.Debug,
		Dumper:        dumper,
		Logger:        logger,
		Policy:        impair.NewPolicy(impairConfig, source),
		ReceiverSide:  receiverSide,
		ReportSeconds: config.ReportSeconds,
		SenderSide:    senderSide,
		Verbose:       config.Verbose,
	}
	logger.Info("type quit or press Ctrl-C to stop")
	if err := relay.Run(ctx); err != nil {
		return err
	}

	summary, err := relay.Stats.Summary()
	if err != nil {
		logger.Infof("no complete one-second window to summarize")
		return nil
	}
	logger.Infof("%s", summary)
	return nil
}

// newRandSource returns a deterministic source when seed is not zero and
// a source seeded from the system entropy otherwise.
func newRandSource(logger model.Logger, seed uint64) rand.Source {
	if seed != 0 {
		logger.Infof("using deterministic random source with seed %d", seed)
		return impair.NewSeededSource(seed)
	}
	return runtimex.Try1(impair.NewEntropySource())
}

// shutdown shuts down srv giving pending requests some time to complete.
func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		srv.Close()
	}
}
