package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"hotelcore/internal/config"
	"hotelcore/internal/database"
	"hotelcore/internal/domain"
	jwtsvc "hotelcore/internal/pkg/jwt"
	"hotelcore/internal/pkg/logger"
	"hotelcore/internal/repository"
)

type seedUser struct {
	name     string
	email    string
	role     domain.Role
	password string
}

var staff = []seedUser{
	{"Administrator", "admin@hotel.local", domain.RoleAdmin, "admin123"},
	{"Saule Manager", "manager@hotel.local", domain.RoleManager, "manager123"},
	{"Erlan Front Desk", "desk@hotel.local", domain.RoleReceptionist, "desk123"},
	{"Gulnara Housekeeping", "housekeeping@hotel.local", domain.RoleHousekeeping, "clean123"},
	{"Timur Maintenance", "maintenance@hotel.local", domain.RoleMaintenance, "fix123"},
}

var guests = []seedUser{
	{"Asel Omarova", "asel@mail.kz", domain.RoleGuest, "guest123"},
	{"Bekzat Ismailov", "bekzat@gmail.com", domain.RoleGuest, "guest123"},
	{"Dina Serikova", "dina@yandex.kz", domain.RoleGuest, "guest123"},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("db migrate failed")
	}

	ctx := context.Background()
	store := repository.NewStore(db)
	tokens := jwtsvc.New(cfg.JWTSecret, 30*24*time.Hour)

	log.Info("creating users")
	for _, u := range append(staff, guests...) {
		created, err := ensureUser(ctx, store, u)
		if err != nil {
			log.WithError(err).WithField("email", u.email).Fatal("create user failed")
		}
		fields := logrus.Fields{"id": created.ID, "email": u.email, "role": u.role}
		if u.role.IsStaff() {
			token, err := tokens.GenerateToken(created.ID, u.role)
			if err != nil {
				log.WithError(err).Fatal("sign token failed")
			}
			fields["token"] = token
		}
		log.WithFields(fields).Info("user ready")
	}

	log.Info("creating rooms")
	for floor := 1; floor <= 3; floor++ {
		for n := 1; n <= 4; n++ {
			room := roomFor(floor, n)
			var existing int64
			if err := db.Model(&domain.Room{}).Where("room_number = ?", room.RoomNumber).Count(&existing).Error; err != nil {
				log.WithError(err).Fatal("lookup room failed")
			}
			if existing > 0 {
				continue
			}
			if err := store.Rooms().Create(ctx, &room); err != nil {
				log.WithError(err).WithField("room_number", room.RoomNumber).Fatal("create room failed")
			}
		}
	}

	log.Info("seed completed")
}

func ensureUser(ctx context.Context, store *repository.Store, u seedUser) (*domain.User, error) {
	if existing, err := store.Users().GetByEmail(ctx, u.email); err == nil {
		return existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         u.name,
		Email:        u.email,
		Role:         u.role,
		PasswordHash: string(hash),
	}
	if err := store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// roomFor lays out four rooms per floor: two standard doubles, a triple and a
// family suite on the corner.
func roomFor(floor, n int) domain.Room {
	room := domain.Room{
		RoomNumber:    fmt.Sprintf("%d%02d", floor, n),
		Floor:         floor,
		RoomType:      "standard",
		Capacity:      2,
		PricePerNight: 100 + float64(floor-1)*10,
	}
	switch n {
	case 3:
		room.RoomType = "triple"
		room.Capacity = 3
		room.PricePerNight += 40
	case 4:
		room.RoomType = "suite"
		room.Capacity = 4
		room.PricePerNight += 120
	}
	return room
}
