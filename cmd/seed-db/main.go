// Command seed-db loads the embedded demo catalog (users, products, offers,
// coupons) into PostgreSQL. Safe to run repeatedly; every write is an upsert.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/JYOTHISHTM/FOXHUB/db"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/catalog"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/coupon"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/pricing"
	"github.com/JYOTHISHTM/FOXHUB/internal/domain/user"
	"github.com/JYOTHISHTM/FOXHUB/internal/repository"
)

type catalogJSON struct {
	Users []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"users"`
	Products []struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Price    decimal.Decimal `json:"price"`
		Quantity int             `json:"quantity"`
		Category string          `json:"category"`
	} `json:"products"`
	ProductOffers []struct {
		ProductID   string          `json:"productId"`
		DiscountPct decimal.Decimal `json:"discountPct"`
	} `json:"productOffers"`
	CategoryOffers []struct {
		Category    string          `json:"category"`
		DiscountPct decimal.Decimal `json:"discountPct"`
	} `json:"categoryOffers"`
	Coupons []struct {
		Code        string          `json:"code"`
		DiscountPct decimal.Decimal `json:"discountPct"`
		MinAmount   decimal.Decimal `json:"minAmount"`
		MaxAmount   decimal.Decimal `json:"maxAmount"`
	} `json:"coupons"`
}

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "", "path to catalog JSON file (default: embedded demo catalog)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	data := db.SeedCatalog
	if catalogFile != "" {
		slog.Info("reading catalog file", slog.String("path", catalogFile))
		var err error
		data, err = os.ReadFile(catalogFile)
		if err != nil {
			return errors.Wrap(err, "read catalog file")
		}
	}

	var cat catalogJSON
	if err := json.Unmarshal(data, &cat); err != nil {
		return errors.Wrap(err, "parse catalog JSON")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	users := repository.NewUserRepository(pool)
	for _, u := range cat.Users {
		if err := users.Upsert(ctx, &user.User{ID: u.ID, Name: u.Name, Email: u.Email}); err != nil {
			return errors.Wrapf(err, "seed user %s", u.ID)
		}
	}
	slog.Info("seeded users", slog.Int("count", len(cat.Users)))

	products := repository.NewProductRepository(pool)
	for _, p := range cat.Products {
		err := products.Upsert(ctx, &catalog.Product{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
			Category: p.Category,
		})
		if err != nil {
			return errors.Wrapf(err, "seed product %s", p.ID)
		}
	}
	slog.Info("seeded products", slog.Int("count", len(cat.Products)))

	offers := repository.NewOfferRepository(pool)
	for _, o := range cat.ProductOffers {
		err := offers.UpsertProductOffer(ctx, &pricing.ProductOffer{
			ProductID:   o.ProductID,
			DiscountPct: o.DiscountPct,
		})
		if err != nil {
			return errors.Wrapf(err, "seed product offer %s", o.ProductID)
		}
	}
	for _, o := range cat.CategoryOffers {
		err := offers.UpsertCategoryOffer(ctx, &pricing.CategoryOffer{
			Category:    o.Category,
			DiscountPct: o.DiscountPct,
		})
		if err != nil {
			return errors.Wrapf(err, "seed category offer %s", o.Category)
		}
	}
	slog.Info("seeded offers",
		slog.Int("product", len(cat.ProductOffers)),
		slog.Int("category", len(cat.CategoryOffers)))

	coupons := repository.NewCouponRepository(pool)
	for _, c := range cat.Coupons {
		err := coupons.Upsert(ctx, &coupon.Coupon{
			Code:        c.Code,
			DiscountPct: c.DiscountPct,
			MinAmount:   c.MinAmount,
			MaxAmount:   c.MaxAmount,
			Active:      true,
		})
		if err != nil {
			return errors.Wrapf(err, "seed coupon %s", c.Code)
		}
	}
	slog.Info("seeded coupons", slog.Int("count", len(cat.Coupons)))

	return nil
}
