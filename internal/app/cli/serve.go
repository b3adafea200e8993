package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"os"
	"time"

	"github.com/wot-oss/fwreg/internal/app/http"
)

func Serve(ctx context.Context, host, port, dist string, opts http.ServerOptions) error {
	stat, err := os.Stat(dist)
	if err != nil || !stat.IsDir() {
		err = fmt.Errorf("%s is not a directory. Run 'fwreg site' first", dist)
		Stderrf("%v", err)
		return err
	}

	s := &nethttp.Server{
		Handler:           http.NewSiteHandler(ctx, dist, opts),
		Addr:              net.JoinHostPort(host, port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("Serving %s on %s\n", dist, s.Addr)
	err = s.ListenAndServe()
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		Stderrf("Could not start fwreg server on %s:%s, %v", host, port, err)
		return err
	}
	return nil
}
