package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront-client/account"
	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/cart"
	"github.com/jrsteele09/go-storefront-client/catalog"
	"github.com/jrsteele09/go-storefront-client/checkout"
	"github.com/jrsteele09/go-storefront-client/credentials"
	"github.com/jrsteele09/go-storefront-client/disputes"
	"github.com/jrsteele09/go-storefront-client/internal/config"
	"github.com/jrsteele09/go-storefront-client/inventory"
	"github.com/jrsteele09/go-storefront-client/memorybank"
	"github.com/jrsteele09/go-storefront-client/store"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

// app wires the client, stores and services together for the CLI commands.
type app struct {
	cfg      config.Config
	states   *store.Store
	accounts *account.Service
	carts    *cart.Service
	catalogs *catalog.Service
	orders   *checkout.Service
	disputes *disputes.Service
	stock    *inventory.Service
	bank     *memorybank.Service
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	if len(args) == 0 {
		displayAppname(c.GetAppName())
		usage()
		return nil
	}

	a, err := newApp(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.GetRequestTimeout()+10*time.Second)
	defer cancel()

	if err := a.dispatch(ctx, args[0], args[1:]); err != nil {
		return err
	}
	return a.states.SaveFile(c.GetDataFolder())
}

func newApp(c config.Config) (*app, error) {
	logger := newLogger(c)

	// Without a passphrase nothing is written at rest; the session lives for
	// this invocation only.
	var creds credentials.Repo = credentials.NewInMemoryRepo()
	if passphrase := c.GetCredentialPassphrase(); passphrase != "" {
		fileRepo, err := credentials.NewFileRepo(c.GetDataFolder(), passphrase)
		if err != nil {
			return nil, err
		}
		creds = fileRepo
	}

	states := store.New()
	if err := states.LoadFile(c.GetDataFolder()); err != nil {
		logger.Warn().Err(err).Msg("could not restore persisted state, starting fresh")
	}

	client, err := api.New(c.GetBaseURL(), creds,
		api.WithLogger(logger),
		api.WithHTTPClient(newHTTPClient(c)),
		api.WithOnSessionExpired(func() {
			fmt.Printf("Your session has expired. Please sign in again: %s\n", c.GetLoginPath())
		}),
	)
	if err != nil {
		return nil, err
	}

	localCart, err := cart.NewLocalStore(c.GetDataFolder())
	if err != nil {
		return nil, err
	}
	localBank, err := memorybank.NewLocalStore(c.GetDataFolder())
	if err != nil {
		return nil, err
	}

	carts := cart.NewService(client, creds, localCart, states, cart.WithLogger(logger))

	return &app{
		cfg:      c,
		states:   states,
		accounts: account.NewService(client, creds, states, account.WithLogger(logger)),
		carts:    carts,
		catalogs: catalog.NewService(client, states),
		orders:   checkout.NewService(client, carts, states),
		disputes: disputes.NewService(client, states),
		stock:    inventory.NewService(client, states),
		bank:     memorybank.NewService(client, creds, localBank, states),
	}, nil
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.accounts.Logout(ctx)
	case "whoami":
		return a.whoami()
	case "products":
		return a.products(ctx)
	case "search":
		return a.search(ctx, args)
	case "merchant":
		return a.merchant(ctx, args)
	case "cart":
		return a.cart(ctx, args)
	case "wishlist":
		return a.wishlist(ctx, args)
	case "stock":
		return a.stockCmd(ctx, args)
	case "checkout":
		return a.checkoutCmd(ctx, args)
	case "orders":
		return a.ordersCmd(ctx)
	case "disputes":
		return a.disputesCmd(ctx)
	case "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: storefront login <email> <password>")
	}
	identity, err := a.accounts.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", identity.Email)
	return nil
}

func (a *app) whoami() error {
	identity, err := a.accounts.CurrentIdentity()
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", identity.Name, identity.Email)
	return nil
}

func (a *app) products(ctx context.Context) error {
	products, err := a.catalogs.Products(ctx)
	if err != nil {
		return err
	}
	printProducts(products)
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: storefront search <query>")
	}
	results, err := a.catalogs.Search(ctx, args[0])
	if err != nil {
		return err
	}
	printProducts(results)
	return nil
}

func (a *app) merchant(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: storefront merchant <slug>")
	}
	merchant, products, err := a.catalogs.Merchant(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", merchant.Name)
	printProducts(products)
	return nil
}

func (a *app) cart(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "show" {
		source, items, err := a.carts.Current(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Cart (%s), %d item(s):\n", source, cart.TotalQty(items))
		for _, item := range items {
			fmt.Printf("  %dx %s\n", item.Qty, item.Product.Name)
		}
		return nil
	}

	if args[0] == "add" {
		if len(args) < 3 {
			return errors.New("usage: storefront cart add <product-id> <qty>")
		}
		productID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[1])
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}

		product, err := a.catalogs.Product(ctx, productID)
		if err != nil {
			return err
		}
		items, err := a.carts.AddItem(ctx, *product, qty, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Added. Cart now has %d item(s).\n", cart.TotalQty(items))
		return nil
	}

	return fmt.Errorf("unknown cart subcommand %q", args[0])
}

func (a *app) wishlist(ctx context.Context, args []string) error {
	if len(args) == 0 {
		entries, err := a.bank.List(ctx)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			fmt.Printf("  %s\n", entry.Product.Name)
		}
		return nil
	}

	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}
	product, err := a.catalogs.Product(ctx, productID)
	if err != nil {
		return err
	}
	_, saved, err := a.bank.Toggle(ctx, *product)
	if err != nil {
		return err
	}
	if saved {
		fmt.Printf("Saved %s\n", product.Name)
	} else {
		fmt.Printf("Removed %s\n", product.Name)
	}
	return nil
}

func (a *app) stockCmd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: storefront stock <product-id>")
	}
	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}
	stock, err := a.stock.Stock(ctx, productID)
	if err != nil {
		return err
	}
	fmt.Printf("Available: %d\n", stock.Available)
	return nil
}

func (a *app) checkoutCmd(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: storefront checkout <line1> <city> <postal-code> <country>")
	}
	order, err := a.orders.PlaceOrder(ctx, checkout.Address{
		Line1:      args[0],
		City:       args[1],
		PostalCode: args[2],
		Country:    args[3],
	})
	if err != nil {
		return err
	}
	fmt.Printf("Order #%d placed (%s), total %.2f\n", order.ID, order.Status, order.Total)
	return nil
}

func (a *app) ordersCmd(ctx context.Context) error {
	orders, err := a.orders.Orders(ctx)
	if err != nil {
		return err
	}
	for _, order := range orders {
		fmt.Printf("  #%d %s %.2f\n", order.ID, order.Status, order.Total)
	}
	return nil
}

func (a *app) disputesCmd(ctx context.Context) error {
	open, err := a.disputes.List(ctx)
	if err != nil {
		return err
	}
	for _, d := range open {
		fmt.Printf("  #%d order %d: %s (%s)\n", d.ID, d.OrderID, d.Reason, d.Status)
	}
	return nil
}

func printProducts(products []catalog.Product) {
	for _, product := range products {
		fmt.Printf("  #%d %s %.2f\n", product.ID, product.Name, product.Price)
	}
}

func newLogger(c config.Config) zerolog.Logger {
	level := zerolog.WarnLevel
	if c.GetEnv() == "DEV" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func newHTTPClient(c config.Config) *http.Client {
	return &http.Client{Timeout: c.GetRequestTimeout()}
}

func usage() {
	fmt.Println(`Usage: storefront <command>

Commands:
  login <email> <password>    sign in
  logout                      sign out
  whoami                      show the signed-in user
  products                    list the catalog
  search <query>              search the catalog
  merchant <slug>             show a merchant storefront
  cart [show]                 show the active cart
  cart add <product-id> <qty> add a product to the active cart
  wishlist [product-id]       list or toggle memory bank entries
  stock <product-id>          show availability
  checkout <line1> <city> <postal-code> <country>
                              place an order from the server cart
  orders                      list order history
  disputes                    list disputes`)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
