package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"dinein/internal/config"
	"dinein/internal/database"
	"dinein/internal/domain"
	"dinein/internal/modules/catalog"
	"dinein/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config failed:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed:", err)
	}

	// Cleanup old data (child tables first)
	log.Println("Cleaning old data...")
	for _, table := range []string{"bills", "order_items", "orders", "reservations", "customers", "menu_items", "tables", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("cleanup %s failed: %v", table, err)
		}
	}

	ctx := context.Background()
	store := repository.NewStore(db)
	svc := catalog.NewService(store, log.Printf)

	// ================== MANAGER ==================
	hash, err := bcrypt.GenerateFromPassword([]byte("manager123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	manager := &domain.User{
		Name:         "Floor Manager",
		Email:        "manager@dinein.local",
		PasswordHash: string(hash),
		Role:         domain.RoleManager,
	}
	if err := store.Users.Create(ctx, manager); err != nil {
		log.Fatal("create manager failed:", err)
	}
	log.Println("Manager created: manager@dinein.local / manager123")
	actor := domain.Actor{UserID: manager.ID, Role: domain.RoleManager}

	// ================== WAITERS ==================
	for i, name := range []string{"Aruzhan", "Daniyar", "Madina"} {
		email := fmt.Sprintf("waiter%d@dinein.local", i+1)
		if _, err := svc.UpsertWaiter(ctx, actor, nil, catalog.WaiterRequest{Name: name, Email: email, Password: "waiter123"}); err != nil {
			log.Fatalf("create waiter %s failed: %v", email, err)
		}
	}
	log.Println("Waiters created: waiter1..3@dinein.local / waiter123")

	// ================== TABLES ==================
	capacities := []int{2, 2, 4, 4, 4, 6, 8}
	for i, capacity := range capacities {
		req := catalog.TableRequest{Number: fmt.Sprintf("T%d", i+1), Capacity: capacity}
		if _, err := svc.UpsertTable(ctx, actor, nil, req); err != nil {
			log.Fatalf("create table %s failed: %v", req.Number, err)
		}
	}
	log.Printf("Tables created: %d", len(capacities))

	// ================== MENU ==================
	menu := []catalog.MenuItemRequest{
		{Name: "Tomato Soup", Price: 5.50, Categories: catalog.CategoryList{"Starters", "Vegetarian"}},
		{Name: "Caesar Salad", Price: 8.00, Categories: catalog.CategoryList{"Starters"}},
		{Name: "Ribeye Steak", Price: 24.00, Categories: catalog.CategoryList{"Mains", "Grill"}},
		{Name: "Grilled Salmon", Price: 19.50, Categories: catalog.CategoryList{"Mains", "Fish"}},
		{Name: "Mushroom Risotto", Price: 15.00, Categories: catalog.CategoryList{"Mains", "Vegetarian"}},
		{Name: "Cheesecake", Price: 7.00, Categories: catalog.CategoryList{"Desserts"}},
		{Name: "Lemonade", Price: 3.50, Categories: catalog.CategoryList{"Drinks"}},
	}
	for _, item := range menu {
		if _, err := svc.UpsertMenuItem(ctx, actor, nil, item); err != nil {
			log.Fatalf("create menu item %s failed: %v", item.Name, err)
		}
	}
	log.Printf("Menu items created: %d", len(menu))

	log.Println("Seed completed")
}
