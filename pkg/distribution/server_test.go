package distribution

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

var _ = Describe("Server", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		store  *Store
		spec   *config.DistributionSpec
	)

	// start serves on a loopback port and returns a client for it and the
	// channel receiving the result of Serve
	start := func() (*Client, <-chan error) {
		server, err := NewServer(store, spec)
		Expect(err).NotTo(HaveOccurred())
		l, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		done := make(chan error, 1)
		go func() {
			done <- server.Serve(ctx, l)
		}()

		client := NewClient(l.Addr().String())
		client.Timeout = 2 * time.Second
		client.Backoff = wait.Backoff{Duration: 10 * time.Millisecond, Factor: 1, Steps: 1}
		return client, done
	}

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		store = NewStore()
		store.Publish(core.NewAllocation(map[core.NodeID]float64{"H1": 8, "H2": 7}))
		spec = &config.DistributionSpec{ReadTimeout: "1s"}
	})

	AfterEach(func() {
		cancel()
	})

	Context("When creating a server", func() {
		It("should reject a nil store", func() {
			_, err := NewServer(nil, spec)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a negative connection bound", func() {
			spec.MaxConnections = -1
			_, err := NewServer(store, spec)
			Expect(err).To(HaveOccurred())
		})

		It("should reject an invalid timeout", func() {
			spec.ReadTimeout = "never"
			_, err := NewServer(store, spec)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("When serving until cancelled", func() {
		It("should send the allocated quantity of a known sink", func() {
			client, _ := start()
			q, err := client.Request(ctx, "H1")
			Expect(err).NotTo(HaveOccurred())
			Expect(q).To(Equal(8.0))
		})

		It("should accept bare sink names", func() {
			client, _ := start()
			q, err := client.RequestRaw(ctx, "H2")
			Expect(err).NotTo(HaveOccurred())
			Expect(q).To(Equal(7.0))
		})

		It("should report an unknown sink and keep serving", func() {
			client, _ := start()
			_, err := client.Request(ctx, "H9")
			Expect(err).To(MatchError(ErrServer))
			Expect(err).To(MatchError(core.ErrUnknownSink))
			Expect(err.Error()).To(ContainSubstring("unknown sink: H9"))

			q, err := client.Request(ctx, "H1")
			Expect(err).NotTo(HaveOccurred())
			Expect(q).To(Equal(8.0))
		})

		It("should report an error before anything is published", func() {
			store = NewStore()
			client, _ := start()
			_, err := client.Request(ctx, "H1")
			Expect(err).To(MatchError(ErrServer))
			Expect(err.Error()).To(ContainSubstring(ErrNotPublished.Error()))
		})

		It("should serve a newly published allocation", func() {
			client, _ := start()
			store.Publish(core.NewAllocation(map[core.NodeID]float64{"H1": 3}))
			q, err := client.Request(ctx, "H1")
			Expect(err).NotTo(HaveOccurred())
			Expect(q).To(Equal(3.0))
		})

		It("should serve concurrent clients independently", func() {
			client, _ := start()
			var names []string
			for i := 0; i < 20; i++ {
				names = append(names, []string{"H1", "H2", "H9"}[i%3])
			}
			replies := client.RequestAll(ctx, names)
			Expect(replies).To(HaveLen(len(names)))
			for i, reply := range replies {
				Expect(reply.Name).To(Equal(names[i]))
				switch reply.Name {
				case "H1":
					Expect(reply.Err).NotTo(HaveOccurred())
					Expect(reply.Resource).To(Equal(8.0))
				case "H2":
					Expect(reply.Err).NotTo(HaveOccurred())
					Expect(reply.Resource).To(Equal(7.0))
				default:
					Expect(reply.Err).To(MatchError(core.ErrUnknownSink))
				}
			}
		})

		It("should close a stalled connection after the timeout", func() {
			spec.ReadTimeout = "200ms"
			client, _ := start()

			conn, err := net.Dial("tcp", client.Address)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()
			Expect(conn.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())

			started := time.Now()
			data, _ := io.ReadAll(conn)
			Expect(data).To(BeEmpty())
			Expect(time.Since(started)).To(BeNumerically("<", 3*time.Second))

			q, err := client.Request(ctx, "H2")
			Expect(err).NotTo(HaveOccurred())
			Expect(q).To(Equal(7.0))
		})

		It("should answer malformed requests with an error", func() {
			client, _ := start()
			conn, err := net.Dial("tcp", client.Address)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()
			_, err = conn.Write([]byte(`{"name": `))
			Expect(err).NotTo(HaveOccurred())

			data, err := io.ReadAll(conn)
			Expect(err).NotTo(HaveOccurred())
			_, err = decodeReply(data)
			Expect(err).To(MatchError(ErrServer))
		})

		It("should stop when the context is cancelled", func() {
			_, done := start()
			cancel()
			Eventually(done, 2*time.Second).Should(Receive(BeNil()))
		})
	})

	Context("When serving a bounded number of connections", func() {
		It("should stop after the configured number of connections", func() {
			spec.MaxConnections = 2
			client, done := start()

			for _, name := range []string{"H1", "H2"} {
				_, err := client.Request(ctx, name)
				Expect(err).NotTo(HaveOccurred(), fmt.Sprintf("request for %s", name))
			}
			Eventually(done, 2*time.Second).Should(Receive(BeNil()))

			_, err := client.Request(ctx, "H1")
			Expect(err).To(HaveOccurred())
		})

		It("should count connections that fail", func() {
			spec.MaxConnections = 1
			client, done := start()

			_, err := client.Request(ctx, "H9")
			Expect(err).To(MatchError(core.ErrUnknownSink))
			Eventually(done, 2*time.Second).Should(Receive(BeNil()))
		})
	})

	Context("When using a bounded worker pool", func() {
		It("should serve all clients", func() {
			spec.PoolSize = 2
			client, _ := start()
			replies := client.RequestAll(ctx, []string{"H1", "H2", "H1", "H2", "H1"})
			for _, reply := range replies {
				Expect(reply.Err).NotTo(HaveOccurred())
			}
		})
	})

	Context("When responding to raw requests", func() {
		It("should classify each outcome", func() {
			server, err := NewServer(store, spec)
			Expect(err).NotTo(HaveOccurred())

			resp, outcome := server.Respond([]byte("H1\n"))
			Expect(outcome).To(Equal(OutcomeServed))
			Expect(*resp.Resource).To(Equal(8.0))

			resp, outcome = server.Respond([]byte("H9"))
			Expect(outcome).To(Equal(OutcomeUnknownSink))
			Expect(resp.Error).To(Equal(config.UnknownSinkMessage + ": H9"))

			_, outcome = server.Respond([]byte("   "))
			Expect(outcome).To(Equal(OutcomeBadRequest))
		})
	})
})
