// shopfront is the CLI for the storefront: browse the catalog, manage
// the local cart, and check out over WhatsApp. Each command performs a
// single operation, making it composable for scripts.
//
// Commands:
//
//	shopfront products [-category Men] [-in-stock] [-search tee]
//	shopfront cart-add -product ID [-size M] [-qty 2]
//	shopfront checkout -name "Jane Doe" -phone "+20100000000"
//	shopfront login -user jane
//
// Examples:
//
//	ID=$(shopfront products -search "denim jacket" -q | head -1)
//	shopfront cart-add -product "$ID" -size L
//	shopfront checkout -name "Jane Doe" -phone "+20100000000"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"shopfront/internal/api"
	"shopfront/internal/cart"
	"shopfront/internal/checkout"
	"shopfront/internal/config"
	"shopfront/internal/mcp"
	"shopfront/internal/middleware"
	"shopfront/internal/model"
	"shopfront/internal/session"
	"shopfront/internal/storage"
)

// Global flags (apply to all commands)
var (
	quiet   bool
	noColor bool
	verbose bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorBlue, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "products":
		runProducts(args)
	case "product":
		runProduct(args)
	case "cart":
		runCartView(args)
	case "cart-add":
		runCartAdd(args)
	case "cart-rm":
		runCartRemove(args)
	case "cart-set":
		runCartSet(args)
	case "cart-clear":
		runCartClear(args)
	case "checkout":
		runCheckout(args)
	case "register":
		runRegister(args)
	case "login":
		runLogin(args)
	case "logout":
		runLogout(args)
	case "whoami":
		runWhoami(args)
	case "orders":
		runOrders(args)
	case "my-orders":
		runMyOrders(args)
	case "order":
		runOrder(args)
	case "order-status":
		runOrderStatus(args)
	case "confirm":
		runConfirm(args)
	case "cancel":
		runCancel(args)
	case "product-add":
		runProductAdd(args)
	case "product-rm":
		runProductRemove(args)
	case "mcp":
		runMCP(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `shopfront - storefront client

Usage:
  shopfront <command> [options]

Catalog:
  products      List products (filter by category, stock, search)
  product       Show a single product
  product-add   Create a product (seller/admin)
  product-rm    Delete a product (seller/admin)

Cart:
  cart          Show the cart
  cart-add      Add a product to the cart
  cart-rm       Remove a cart line
  cart-set      Set a cart line's quantity
  cart-clear    Empty the cart

Checkout:
  checkout      Place the order and print the WhatsApp link

Account:
  register      Create an account
  login         Log in
  logout        Log out and clear stored tokens
  whoami        Show the logged-in user

Orders:
  orders        List all orders (seller/admin)
  my-orders     List your own orders
  order         Show a single order
  order-status  Move an order to a new status (seller/admin)
  confirm       Confirm an order and print the customer message (seller/admin)
  cancel        Cancel an order

Other:
  mcp           Serve the storefront as MCP tools over HTTP

Examples:
  # Find a product and add it to the cart
  ID=$(shopfront products -search "denim jacket" -q | head -1)
  shopfront cart-add -product "$ID" -size L

  # Check out; the WhatsApp link opens a prefilled chat with the store
  shopfront checkout -name "Jane Doe" -phone "+20100000000"

Run 'shopfront <command> -h' for command-specific options.
`)
}

// =============================================================================
// APP WIRING
// =============================================================================

// app bundles the services every command needs.
type app struct {
	cfg      *config.Config
	client   *api.Client
	session  *session.Store
	cart     *cart.Store
	checkout *checkout.Service
	logger   *slog.Logger
}

// newApp loads config and wires the client stack. Fatal on any error:
// commands cannot run without it.
func newApp(ctx context.Context) *app {
	cfg, err := config.Load(ctx)
	if err != nil {
		fatal("Config error: %v", err)
	}

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = storage.DefaultStateDir()
	}
	kv, err := storage.NewFileStore(stateDir)
	if err != nil {
		fatal("Opening state directory: %v", err)
	}

	sess := session.New(kv)
	client, err := api.New(api.Config{
		BaseURL:    cfg.Store.BaseURL,
		Tokens:     sess,
		Logger:     logger,
		BrowserTLS: cfg.BrowserTLS,
		Timeout:    cfg.Timeout,
	})
	if err != nil {
		fatal("Creating API client: %v", err)
	}

	cartStore := cart.New(kv)
	svc := checkout.NewService(checkout.ServiceConfig{
		Orders:     client,
		Cart:       cartStore,
		StoreName:  cfg.Store.StoreName,
		RefPrefix:  cfg.Store.RefPrefix,
		StorePhone: cfg.Store.WhatsAppNumber,
		Logger:     logger,
	})

	return &app{
		cfg:      cfg,
		client:   client,
		session:  sess,
		cart:     cartStore,
		checkout: svc,
		logger:   logger,
	}
}

func globalFlags(fs *flag.FlagSet) {
	fs.BoolVar(&quiet, "q", false, "Quiet mode - minimal, script-friendly output")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - debug logging")
}

func parse(fs *flag.FlagSet, args []string) {
	fs.Parse(args)
	if noColor {
		disableColors()
	}
}

// =============================================================================
// CATALOG COMMANDS
// =============================================================================

func runProducts(args []string) {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	var category, ordering, search string
	var inStock bool
	fs.StringVar(&category, "category", "", "Category: Men, Women, Kids, Accessories, Shoes")
	fs.BoolVar(&inStock, "in-stock", false, "Only in-stock products")
	fs.StringVar(&ordering, "order", "", "Sort key: price, -price, created_at, -created_at")
	fs.StringVar(&search, "search", "", "Free-text search")
	globalFlags(fs)
	parse(fs, args)

	app := newApp(context.Background())
	filter := api.ProductFilter{
		Category: model.Category(category),
		Ordering: ordering,
		Search:   search,
	}
	if inStock {
		t := true
		filter.InStock = &t
	}

	products, err := app.client.Products(context.Background(), filter)
	if err != nil {
		fatal("Failed to list products: %v", err)
	}

	if quiet {
		for _, p := range products {
			fmt.Println(p.ID)
		}
		return
	}

	printSuccess("%d products", len(products))
	for _, p := range products {
		stock := colorGreen + "in stock" + colorReset
		if !p.InStock {
			stock = colorRed + "out of stock" + colorReset
		}
		price := p.EffectivePrice().String()
		if p.DiscountedPrice > 0 {
			price = fmt.Sprintf("%s %s(was %s)%s", price, colorGray, p.Price, colorReset)
		}
		fmt.Printf("  %s%s%s  %s%s%s  %s  %s\n",
			colorCyan, p.ID, colorReset, colorBold, p.Name, colorReset, price, stock)
		if verbose {
			fmt.Printf("      %s%s / sizes %s / barcode %s%s\n",
				colorGray, p.Category, strings.Join(p.Sizes, ","), p.Barcode, colorReset)
		}
	}
}

func runProduct(args []string) {
	fs := flag.NewFlagSet("product", flag.ExitOnError)
	var id string
	fs.StringVar(&id, "id", "", "Product ID (required)")
	globalFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopfront product -id <product-id> [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	parse(fs, args)
	if id == "" {
		fs.Usage()
		os.Exit(1)
	}

	app := newApp(context.Background())
	p, err := app.client.Product(context.Background(), id)
	if err != nil {
		fatal("Failed to get product: %v", err)
	}

	if quiet {
		fmt.Println(p.Name)
		return
	}
	printSuccess("%s", p.Name)
	fmt.Printf("  ID:       %s%s%s\n", colorCyan, p.ID, colorReset)
	fmt.Printf("  Price:    %s%s%s\n", colorGreen, p.EffectivePrice(), colorReset)
	fmt.Printf("  Category: %s\n", p.Category)
	if p.Barcode != "" {
		fmt.Printf("  SKU:      %s\n", p.Barcode)
	}
	if len(p.Sizes) > 0 {
		fmt.Printf("  Sizes:    %s\n", strings.Join(p.Sizes, ", "))
	}
	if len(p.Colors) > 0 {
		fmt.Printf("  Colors:   %s\n", strings.Join(p.Colors, ", "))
	}
	fmt.Printf("  Stock:    %d\n", p.Quantity)
	if p.Description != "" {
		fmt.Printf("  %s%s%s\n", colorGray, p.Description, colorReset)
	}
}

func runProductAdd(args []string) {
	fs := flag.NewFlagSet("product-add", flag.ExitOnError)
	var name, description, barcode, category, sizes, colors string
	var price, discounted float64
	var qty int
	fs.StringVar(&name, "name", "", "Product name (required)")
	fs.StringVar(&description, "desc", "", "Description")
	fs.StringVar(&barcode, "barcode", "", "SKU/barcode")
	fs.StringVar(&category, "category", "", "Category (required)")
	fs.Float64Var(&price, "price", 0, "Price in dollars (required)")
	fs.Float64Var(&discounted, "discounted", 0, "Discounted price in dollars")
	fs.IntVar(&qty, "qty", 0, "Stock quantity")
	fs.StringVar(&sizes, "sizes", "", "Comma-separated sizes, e.g. S,M,L")
	fs.StringVar(&colors, "colors", "", "Comma-separated colors")
	globalFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopfront product-add -name NAME -category CAT -price N [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	parse(fs, args)
	if name == "" || category == "" || price <= 0 {
		fs.Usage()
		os.Exit(1)
	}

	input := api.ProductInput{
		Name:            name,
		Description:     description,
		Barcode:         barcode,
		Category:        model.Category(category),
		Price:           model.CentsFromFloat(price),
		DiscountedPrice: model.CentsFromFloat(discounted),
		Quantity:        qty,
		InStock:         qty > 0,
	}
	if sizes != "" {
		input.Sizes = strings.Split(sizes, ",")
	}
	if colors != "" {
		input.Colors = strings.Split(colors, ",")
	}

	app := newApp(context.Background())
	p, err := app.client.CreateProduct(context.Background(), input)
	if err != nil {
		fatal("Failed to create product: %v", err)
	}

	if quiet {
		fmt.Println(p.ID)
		return
	}
	printSuccess("Product created")
	fmt.Printf("  ID: %s%s%s\n", colorCyan, p.ID, colorReset)
}

func runProductRemove(args []string) {
	fs := flag.NewFlagSet("product-rm", flag.ExitOnError)
	var id string
	fs.StringVar(&id, "id", "", "Product ID (required)")
	globalFlags(fs)
	parse(fs, args)
	if id == "" {
		fs.Usage()
		os.Exit(1)
	}

	app := newApp(context.Background())
	if err := app.client.DeleteProduct(context.Background(), id); err != nil {
		fatal("Failed to delete product: %v", err)
	}
	printSuccess("Product %s deleted", id)
}

// =============================================================================
// CART COMMANDS
// =============================================================================

func runCartAdd(args []string) {
	fs := flag.NewFlagSet("cart-add", flag.ExitOnError)
	var productID, size, color string
	var qty int
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.StringVar(&size, "size", "", "Size variant")
	fs.StringVar(&color, "color", "", "Color variant")
	fs.IntVar(&qty, "qty", 1, "Quantity to add")
	globalFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopfront cart-add -product ID [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	parse(fs, args)
	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}
	if qty < 1 {
		qty = 1
	}

	app := newApp(context.Background())
	p, err := app.client.Product(context.Background(), productID)
	if err != nil {
		fatal("Failed to fetch product: %v", err)
	}

	line := cart.LineFromProduct(p, size, color)
	for i := 0; i < qty; i++ {
		if err := app.cart.Add(line); err != nil {
			fatal("Failed to update cart: %v", err)
		}
	}

	printSuccess("Added %s ×%d", p.Name, qty)
	printCartSummary(app.cart)
}

func runCartRemove(args []string) {
	fs := flag.NewFlagSet("cart-rm", flag.ExitOnError)
	var productID, size string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.StringVar(&size, "size", "", "Size variant of the line")
	globalFlags(fs)
	parse(fs, args)
	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	app := newApp(context.Background())
	if err := app.cart.Remove(productID, size); err != nil {
		fatal("Failed to update cart: %v", err)
	}
	printSuccess("Line removed")
	printCartSummary(app.cart)
}

func runCartSet(args []string) {
	fs := flag.NewFlagSet("cart-set", flag.ExitOnError)
	var productID, size string
	var qty int
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.StringVar(&size, "size", "", "Size variant of the line")
	fs.IntVar(&qty, "qty", -1, "New quantity; 0 removes the line (required)")
	globalFlags(fs)
	parse(fs, args)
	if productID == "" || qty < 0 {
		fs.Usage()
		os.Exit(1)
	}

	app := newApp(context.Background())
	if err := app.cart.UpdateQuantity(productID, qty, size); err != nil {
		fatal("Failed to update cart: %v", err)
	}
	printSuccess("Quantity set")
	printCartSummary(app.cart)
}

func runCartClear(args []string) {
	fs := flag.NewFlagSet("cart-clear", flag.ExitOnError)
	globalFlags(fs)
	parse(fs, args)

	app := newApp(context.Background())
	if err := app.cart.Clear(); err != nil {
		fatal("Failed to clear cart: %v", err)
	}
	printSuccess("Cart cleared")
}

func runCartView(args []string) {
	fs := flag.NewFlagSet("cart", flag.ExitOnError)
	globalFlags(fs)
	parse(fs, args)

	app := newApp(context.Background())
	items := app.cart.Items()
	if len(items) == 0 {
		printInfo("Cart is empty")
		return
	}

	if quiet {
		for _, it := range items {
			fmt.Printf("%s\t%s\t%d\n", it.ProductID, it.SelectedSize, it.Quantity)
		}
		return
	}

	printSuccess("%d lines", len(items))
	for i, it := range items {
		variant := ""
		if it.SelectedSize != "" {
			variant += " size " + it.SelectedSize
		}
		if it.SelectedColor != "" {
			variant += " " + it.SelectedColor
		}
		fmt.Printf("  %d. %s%s%s%s  %s × %d = %s%s%s\n",
			i+1, colorBold, it.Name, colorReset, variant,
			it.UnitPrice, it.Quantity, colorGreen, it.Subtotal(), colorReset)
	}
	printCartSummary(app.cart)
}

func printCartSummary(c *cart.Store) {
	if quiet {
		return
	}
	fmt.Printf("  %sTotal: %s (%d items)%s\n", colorGray, c.Total(), c.ItemCount(), colorReset)
}

// =============================================================================
// CHECKOUT COMMAND
// =============================================================================

func runCheckout(args []string) {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	var name, phone, address string
	fs.StringVar(&name, "name", "", "Customer name (required)")
	fs.StringVar(&phone, "phone", "", "Customer phone (required)")
	fs.StringVar(&address, "address", "", "Delivery address")
	globalFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopfront checkout -name NAME -phone PHONE [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	parse(fs, args)
	if name == "" || phone == "" {
		fs.Usage()
		os.Exit(1)
	}

	app := newApp(context.Background())
	res, err := app.checkout.Checkout(context.Background(), checkout.Form{
		CustomerName:    name,
		CustomerPhone:   phone,
		CustomerAddress: address,
	})
	if err != nil {
		fatal("Checkout failed: %v", err)
	}

	if quiet {
		fmt.Println(res.Link)
		return
	}

	if res.Persisted {
		printSuccess("Order placed")
	} else {
		printWarning("%s", res.Warning)
	}
	fmt.Printf("  Reference: %s%s%s\n", colorCyan, res.Reference, colorReset)
	fmt.Printf("  WhatsApp:  %s%s%s\n", colorBlue, res.Link, colorReset)
	if verbose {
		fmt.Printf("\n%s\n", res.Message)
	}
}

// =============================================================================
// ACCOUNT COMMANDS
// =============================================================================

// readPassword prompts without echoing when stdin is a terminal.
func readPassword(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			fatal("Reading password: %v", err)
		}
		return string(b)
	}
	var pw string
	fmt.Scanln(&pw)
	return pw
}

func runRegister(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	var username, email, role string
	fs.StringVar(&username, "user", "", "Username (required)")
	fs.StringVar(&email, "email", "", "Email (required)")
	fs.StringVar(&role, "role", "buyer", "Role: buyer or seller")
	globalFlags(fs)
	parse(fs, args)
	if username == "" || email == "" {
		fs.Usage()
		os.Exit(1)
	}

	password := readPassword("Password: ")
	confirm := readPassword("Confirm password: ")

	app := newApp(context.Background())
	user, err := app.client.Register(context.Background(), api.Registration{
		Username:        username,
		Email:           email,
		Password:        password,
		PasswordConfirm: confirm,
		Role:            model.Role(role),
	})
	if err != nil {
		fatal("Registration failed: %v", err)
	}

	printSuccess("Account created, logged in")
	if user != nil {
		fmt.Printf("  User: %s%s%s (%s)\n", colorCyan, user.Username, colorReset, user.Role)
	}
}

func runLogin(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	var username string
	fs.StringVar(&username, "user", "", "Username (required)")
	globalFlags(fs)
	parse(fs, args)
	if username == "" {
		fs.Usage()
		os.Exit(1)
	}

	password := readPassword("Password: ")

	app := newApp(context.Background())
	user, err := app.client.Login(context.Background(), api.Credentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		fatal("Login failed: %v", err)
	}

	printSuccess("Logged in")
	if user != nil {
		fmt.Printf("  User: %s%s%s (%s)\n", colorCyan, user.Username, colorReset, user.Role)
	}
}

func runLogout(args []string) {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	globalFlags(fs)
	parse(fs, args)

	app := newApp(context.Background())
	if err := app.client.Logout(); err != nil {
		fatal("Logout failed: %v", err)
	}
	printSuccess("Logged out")
}

func runWhoami(args []string) {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	var remote bool
	fs.BoolVar(&remote, "remote", false, "Fetch the profile from the backend instead of the cache")
	globalFlags(fs)
	parse(fs, args)

	app := newApp(context.Background())
	if !app.session.LoggedIn() {
		printInfo("Not logged in")
		os.Exit(1)
	}

	user := app.session.User()
	if remote {
		var err error
		user, err = app.client.Profile(context.Background())
		if err != nil {
			fatal("Failed to fetch profile: %v", err)
		}
	}
	if user == nil {
		printInfo("Logged in, profile not cached (try -remote)")
		return
	}

	if quiet {
		fmt.Println(user.Username)
		return
	}
	printSuccess("%s", user.Username)
	fmt.Printf("  Role:  %s\n", user.Role)
	fmt.Printf("  Email: %s\n", user.Email)
	if exp, ok := app.session.AccessExpiry(); ok {
		color := colorGreen
		if time.Now().After(exp) {
			color = colorRed
		}
		fmt.Printf("  Token expires: %s%s%s\n", color, exp.Format(time.RFC3339), colorReset)
	}
}

// =============================================================================
// ORDER COMMANDS
// =============================================================================

func runOrders(args []string) {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	globalFlags(fs)
	parse(fs, args)
	app := newApp(context.Background())
	orders, err := app.client.Orders(context.Background())
	if err != nil {
		fatal("Failed to list orders: %v", err)
	}
	printOrderList(orders)
}

func runMyOrders(args []string) {
	fs := flag.NewFlagSet("my-orders", flag.ExitOnError)
	globalFlags(fs)
	parse(fs, args)
	app := newApp(context.Background())
	orders, err := app.client.MyOrders(context.Background())
	if err != nil {
		fatal("Failed to list orders: %v", err)
	}
	printOrderList(orders)
}

func printOrderList(orders []model.Order) {
	if quiet {
		for _, o := range orders {
			fmt.Println(o.ID)
		}
		return
	}
	printSuccess("%d orders", len(orders))
	for _, o := range orders {
		fmt.Printf("  %s%s%s  %s%s%s  %s  %s  %s\n",
			colorCyan, o.ID, colorReset,
			colorBold, o.OrderReference, colorReset,
			statusColored(o.Status), o.Total, o.CustomerName)
	}
}

func statusColored(s model.OrderStatus) string {
	color := colorYellow
	switch s {
	case model.StatusDelivered, model.StatusConfirmed:
		color = colorGreen
	case model.StatusCancelled:
		color = colorRed
	}
	return color + string(s) + colorReset
}

func runOrder(args []string) {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	var id string
	fs.StringVar(&id, "id", "", "Order ID (required)")
	globalFlags(fs)
	parse(fs, args)
	if id == "" {
		fs.Usage()
		os.Exit(1)
	}

	app := newApp(context.Background())
	o, err := app.client.Order(context.Background(), id)
	if err != nil {
		fatal("Failed to get order: %v", err)
	}

	if quiet {
		fmt.Println(o.Status)
		return
	}
	printSuccess("Order %s", o.OrderReference)
	fmt.Printf("  Status:   %s\n", statusColored(o.Status))
	fmt.Printf("  Customer: %s (%s)\n", o.CustomerName, o.CustomerPhone)
	fmt.Printf("  Date:     %s\n", o.OrderDate.Format(time.RFC3339))
	for _, it := range o.Items {
		variant := ""
		if it.SelectedSize != "" {
			variant = " size " + it.SelectedSize
		}
		fmt.Printf("    - %s%s  %s × %d\n", it.ProductName, variant, it.UnitPrice, it.Quantity)
	}
	fmt.Printf("  Total: %s%s%s (%d items)\n", colorGreen, o.Total, colorReset, o.ItemCount)
}

func runOrderStatus(args []string) {
	fs := flag.NewFlagSet("order-status", flag.ExitOnError)
	var id, status string
	fs.StringVar(&id, "id", "", "Order ID (required)")
	fs.StringVar(&status, "status", "", "New status: pending, confirmed, processing, shipped, delivered, cancelled (required)")
	globalFlags(fs)
	parse(fs, args)
	if id == "" || status == "" {
		fs.Usage()
		os.Exit(1)
	}

	app := newApp(context.Background())
	o, err := app.client.UpdateOrderStatus(context.Background(), id, model.OrderStatus(status))
	if err != nil {
		fatal("Failed to update order: %v", err)
	}
	printSuccess("Order %s is now %s", o.OrderReference, statusColored(o.Status))
}

func runConfirm(args []string) {
	fs := flag.NewFlagSet("confirm", flag.ExitOnError)
	var id, baseURL string
	fs.StringVar(&id, "id", "", "Order ID (required)")
	fs.StringVar(&baseURL, "store-url", "", "Storefront origin for product links in the customer message")
	globalFlags(fs)
	parse(fs, args)
	if id == "" {
		fs.Usage()
		os.Exit(1)
	}

	app := newApp(context.Background())
	res, err := app.client.ConfirmOrder(context.Background(), id)
	if err != nil {
		fatal("Failed to confirm order: %v", err)
	}

	if !res.Success {
		printWarning("Confirmation rejected: %s", res.Message)
		os.Exit(1)
	}
	printSuccess("Order confirmed")
	if res.StockUpdated {
		printInfo("Stock levels updated")
	}
	if res.Order != nil {
		if baseURL == "" {
			baseURL = app.cfg.Store.BaseURL
		}
		message, link := app.checkout.ConfirmationMessage(res.Order, baseURL)
		fmt.Printf("  Customer WhatsApp: %s%s%s\n", colorBlue, link, colorReset)
		if verbose {
			fmt.Printf("\n%s\n", message)
		}
	}
}

func runCancel(args []string) {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	var id string
	fs.StringVar(&id, "id", "", "Order ID (required)")
	globalFlags(fs)
	parse(fs, args)
	if id == "" {
		fs.Usage()
		os.Exit(1)
	}

	app := newApp(context.Background())
	o, err := app.client.CancelOrder(context.Background(), id)
	if err != nil {
		fatal("Failed to cancel order: %v", err)
	}
	printSuccess("Order %s cancelled", o.OrderReference)
}

// =============================================================================
// MCP COMMAND
// =============================================================================

func runMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	var port string
	fs.StringVar(&port, "port", "", "Port to listen on (default from config, else 8080)")
	globalFlags(fs)
	parse(fs, args)

	app := newApp(context.Background())
	if port == "" {
		port = app.cfg.MCPPort
	}
	if port == "" {
		port = "8080"
	}

	server := mcp.NewServer(app.client, app.cart, app.checkout, app.logger)
	mux := http.NewServeMux()
	mux.Handle("/mcp", server.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	handler := middleware.Chain(
		middleware.Recovery(app.logger),
		middleware.RequestID(),
		middleware.Logging(app.logger),
	)(mux)

	app.logger.Info("mcp listener starting", slog.String("port", port))
	printInfo("MCP server on :%s/mcp", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		fatal("MCP server: %v", err)
	}
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printWarning(format string, args ...interface{}) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
