package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedCategories = []string{"sports", "music", "travel", "food", "fitness", "movies", "books", "tech"}

// SeedTestData resets the database and populates it with demo data:
// 20 users (10 male, 10 female) with hashed passwords, like/pass
// decisions with guaranteed mutuals, follow edges, categorized posts
// with views, and a few chat messages per mutual pair.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(database *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	tables := []string{
		"messages", "broadcast_recipients", "broadcast_messages",
		"post_views", "post_reactions", "comments", "post_media",
		"post_tags", "post_categories", "posts",
		"content_preferences", "followers", "profile_visits",
		"friendships", "decisions", "users",
	}
	for _, table := range tables {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch database.Dialector.Name() {
	case "mysql":
		database.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
		database.Exec("ALTER TABLE posts AUTO_INCREMENT = 1")
		database.Exec("ALTER TABLE messages AUTO_INCREMENT = 1")
	case "sqlite":
		database.Exec("DELETE FROM sqlite_sequence WHERE name IN ('users', 'posts', 'messages')")
	}

	log.Println("Cleared existing data")

	// --- Users (10 male, 10 female) ---
	firstNames := []string{
		"Liam", "Noah", "Oliver", "Elijah", "James", "Lucas", "Mason", "Ethan", "Leo", "Henry",
		"Olivia", "Emma", "Ava", "Sophia", "Mia", "Amelia", "Isabella", "Luna", "Chloe", "Zoe",
	}

	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		if i > 10 {
			gender = "female"
		}

		user := User{
			Email:          fmt.Sprintf("user%d@example.com", i),
			PasswordHash:   string(hash),
			FirstName:      firstNames[i-1],
			LastName:       "Demo",
			Gender:         gender,
			State:          []string{"CA", "NY", "TX", "WA"}[r.Intn(4)],
			Age:            20 + r.Intn(20),
			Bio:            "Demo profile",
			ProfilePicture: fmt.Sprintf("https://cdn.example.com/avatars/%d.jpg", i),
			Active:         true,
			LastLoginAt:    time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := database.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	// --- Decisions (~70% likes, every 3rd pair mutual) ---
	counter := 0
	for actorID := uint64(1); actorID <= 20; actorID++ {
		for j := 0; j < 8; j++ {
			recipientID := uint64(r.Intn(20) + 1)
			if actorID == recipientID {
				continue
			}
			// opposite gender pairs only
			if (actorID <= 10) == (recipientID <= 10) {
				continue
			}

			liked := r.Intn(100) < 70

			if counter%3 == 0 {
				liked = true
				recip := Decision{ActorID: recipientID, RecipientID: actorID, Liked: true}
				database.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "actor_id"}, {Name: "recipient_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
				}).Create(&recip)
				low, high := actorID, recipientID
				if low > high {
					low, high = high, low
				}
				database.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&Friendship{UserAID: low, UserBID: high})
			}

			decision := Decision{ActorID: actorID, RecipientID: recipientID, Liked: liked}
			if err := database.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "actor_id"}, {Name: "recipient_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
			}).Create(&decision).Error; err != nil {
				return fmt.Errorf("failed to seed decision: %w", err)
			}
			counter++
		}
	}
	log.Println("Seeded decisions.")

	// --- Follow edges ---
	for followerID := uint64(1); followerID <= 20; followerID++ {
		for j := 0; j < 4; j++ {
			userID := uint64(r.Intn(20) + 1)
			if userID == followerID {
				continue
			}
			database.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&Follower{UserID: userID, FollowerID: followerID})
		}
	}

	// --- Posts with categories and views ---
	for i := 0; i < 60; i++ {
		authorID := uint64(r.Intn(20) + 1)
		post := Post{
			AuthorID:   authorID,
			Content:    fmt.Sprintf("Demo post %d", i+1),
			Visibility: VisibilityPublic,
			IsHidden:   r.Intn(10) == 0,
		}
		for _, c := range pickCategories(r) {
			post.Categories = append(post.Categories, PostCategory{Category: c})
		}
		if err := database.Create(&post).Error; err != nil {
			return fmt.Errorf("failed to seed post: %w", err)
		}

		// a few unique viewers, with matching preference tallies
		for v := 0; v < r.Intn(5); v++ {
			viewerID := uint64(r.Intn(20) + 1)
			res := database.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&PostView{PostID: post.ID, UserID: viewerID})
			if res.RowsAffected == 0 {
				continue
			}
			for _, c := range post.Categories {
				database.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "user_id"}, {Name: "category"}},
					DoUpdates: clause.Assignments(map[string]interface{}{
						"count":       gorm.Expr("count + 1"),
						"last_viewed": time.Now().UTC(),
					}),
				}).Create(&ContentPreference{
					UserID: viewerID, Category: c.Category, Count: 1, LastViewed: time.Now().UTC(),
				})
			}
		}
	}
	log.Println("Seeded posts.")

	// --- Messages between mutual pairs ---
	var friendships []Friendship
	if err := database.Find(&friendships).Error; err != nil {
		return err
	}
	for _, f := range friendships {
		for m := 0; m < 3; m++ {
			sender, recipient := f.UserAID, f.UserBID
			if m%2 == 1 {
				sender, recipient = recipient, sender
			}
			database.Create(&Message{
				SenderID:    sender,
				RecipientID: recipient,
				Content:     fmt.Sprintf("Hey! (%d)", m+1),
			})
		}
	}
	log.Println("Seeded messages.")

	return nil
}

func pickCategories(r *rand.Rand) []string {
	n := 1 + r.Intn(3)
	seen := map[string]struct{}{}
	out := make([]string, 0, n)
	for len(out) < n {
		c := seedCategories[r.Intn(len(seedCategories))]
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
