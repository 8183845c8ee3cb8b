package distribution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/relief-ops/supply-allocator/internal/logger"
	"github.com/relief-ops/supply-allocator/internal/metrics"
	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

// Serves the published allocation over TCP, one request and one reply per connection
type Server struct {
	store   *Store
	spec    config.DistributionSpec
	timeout time.Duration
	emitter *metrics.MetricsEmitter

	wg sync.WaitGroup
}

func NewServer(store *Store, spec *config.DistributionSpec) (*Server, error) {
	if store == nil {
		return nil, errors.New("nil allocation store")
	}
	if spec == nil {
		spec = &config.DistributionSpec{}
	}
	if spec.MaxConnections < 0 {
		return nil, fmt.Errorf("max connections must not be negative, got %d", spec.MaxConnections)
	}
	timeout, err := spec.Timeout()
	if err != nil {
		return nil, err
	}
	return &Server{
		store:   store,
		spec:    *spec,
		timeout: timeout,
		emitter: metrics.NewMetricsEmitter(),
	}, nil
}

// ListenAndServe listens on the configured address and serves until done
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.spec.Address())
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is cancelled or, in bounded mode,
// the configured number of connections has been accepted. It returns after
// all accepted connections have been handled. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	size := s.spec.PoolSize
	if size <= 0 {
		size = -1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		l.Close()
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		l.Close()
	}()

	logger.Log.Infow("distribution server started", "address", l.Addr().String(),
		"maxConnections", s.spec.MaxConnections, "poolSize", s.spec.PoolSize)

	var serveErr error
	accepted := 0
	for s.spec.MaxConnections == 0 || accepted < s.spec.MaxConnections {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				serveErr = err
			}
			break
		}
		accepted++
		s.wg.Add(1)
		if err := pool.Submit(func() { s.handle(conn) }); err != nil {
			logger.Log.Errorw("failed to submit connection", "err", err)
			conn.Close()
			s.wg.Done()
		}
	}
	cancel()
	s.wg.Wait()

	logger.Log.Infow("distribution server stopped", "accepted", accepted)
	return serveErr
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	s.emitter.ConnectionOpened()
	defer s.emitter.ConnectionClosed()

	log := logger.Log.With("conn", uuid.NewString(), "remote", conn.RemoteAddr().String())
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		log.Warnw("failed to set deadline", "err", err)
	}

	buf := make([]byte, config.MaxRequestBytes)
	n, err := conn.Read(buf)
	if n == 0 {
		log.Warnw("failed to read request", "err", err)
		s.emitter.EmitRequestMetrics(OutcomeReadError)
		return
	}

	resp, outcome := s.Respond(buf[:n])
	data, err := json.Marshal(resp)
	if err != nil {
		log.Errorw("failed to encode response", "err", err)
		s.emitter.EmitRequestMetrics(OutcomeWriteError)
		return
	}
	if _, err := conn.Write(data); err != nil {
		log.Warnw("failed to write response", "err", err)
		s.emitter.EmitRequestMetrics(OutcomeWriteError)
		return
	}
	s.emitter.EmitRequestMetrics(outcome)
	if resp.Error != "" {
		log.Infow("request rejected", "outcome", outcome, "error", resp.Error)
	} else {
		log.Infow("resource sent", "quantity", *resp.Resource)
	}
}

// Respond builds the reply to a raw request and its outcome label
func (s *Server) Respond(data []byte) (*Response, string) {
	name, err := ParseRequest(data)
	if err != nil {
		return ErrorResponse(err), OutcomeBadRequest
	}
	q, err := s.store.Lookup(name)
	switch {
	case err == nil:
		return ResourceResponse(q), OutcomeServed
	case errors.Is(err, core.ErrUnknownSink):
		return ErrorResponse(fmt.Errorf("%s: %s", config.UnknownSinkMessage, name)), OutcomeUnknownSink
	default:
		return ErrorResponse(err), OutcomeNotPublished
	}
}
