package security

// In-memory client registry (replace with DB/config later)
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read","orders.write"}
	Enabled bool
}

var Clients = map[string]Client{
	"storefront":      {ID: "storefront", Secret: "storefront-secret", Perms: []string{"orders.read", "orders.write", "entitlements.read", "downloads.write"}, Enabled: true},
	"svc-bank-bridge": {ID: "svc-bank-bridge", Secret: "bridge-secret", Perms: []string{"payments.ingest"}, Enabled: true},
	"backoffice":      {ID: "backoffice", Secret: "backoffice-secret", Perms: []string{"orders.read", "admin.orders", "admin.coupons"}, Enabled: true},
}
