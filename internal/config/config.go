package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID                    string
	Port                         string
	Environment                  string
	AllowedOrigins               []string
	StorageBucket                string
	StripeSecretKey              string
	StripeWebhookSecret          string
	DonationCurrency             string
	DonationSuccessURL           string
	DonationCancelURL            string
	SignedURLServiceAccountEmail string
}

func Load() Config {
	// Local development reads a .env file; deployed environments set
	// real environment variables.
	_ = godotenv.Load()

	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	storageBucket := getenv("FIREBASE_STORAGE_BUCKET", "")
	if storageBucket == "" && projectID != "" {
		storageBucket = projectID + ".appspot.com"
	}

	origins := getenv("ALLOWED_ORIGINS", "http://localhost:3000")
	allowed := []string{}
	for _, o := range strings.Split(origins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			allowed = append(allowed, o)
		}
	}

	return Config{
		ProjectID:                    projectID,
		Port:                         getenv("PORT", "8080"),
		Environment:                  getenv("ENVIRONMENT", "development"),
		AllowedOrigins:               allowed,
		StorageBucket:                storageBucket,
		StripeSecretKey:              getenv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:          getenv("STRIPE_WEBHOOK_SECRET", ""),
		DonationCurrency:             getenv("DONATION_CURRENCY", "usd"),
		DonationSuccessURL:           getenv("DONATION_SUCCESS_URL", "http://localhost:3000/donate/thanks"),
		DonationCancelURL:            getenv("DONATION_CANCEL_URL", "http://localhost:3000/donate"),
		SignedURLServiceAccountEmail: getenv("SIGNED_URL_SERVICE_ACCOUNT_EMAIL", ""),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
