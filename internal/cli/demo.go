package cli

import (
	"strconv"
	"time"

	"expo-admin/internal/domain"
	"expo-admin/internal/infra/memory"
	"expo-admin/internal/listmanager"
)

const (
	demoEmail    = "demo@expo-admin.local"
	demoPassword = "demo"
	demoMaxScore = 10
)

var (
	demoQuizzes = []string{"1", "2", "3"}
	demoPlayers = []string{"1", "2", "3", "4"}
)

// demoStore returns a fresh in-memory backend with a small exhibition and a
// week of quiz results ending now.
func demoStore() *memory.ResourceStore {
	now := time.Now().UTC()
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(time.RFC3339) }

	seed := memory.Seed{
		Accounts: map[string]string{demoEmail: demoPassword},
		Records: map[string][]listmanager.Record{
			domain.ResourceExpos: {
				{"id": "1", "name": "Science Week", "location": "Hall A", "startDate": day(-3), "endDate": day(4)},
				{"id": "2", "name": "Ocean Days", "location": "Harbour Pavilion", "startDate": day(10), "endDate": day(17)},
			},
			domain.ResourceConsoles: {
				{"id": "1", "name": "Entrance kiosk", "location": "Hall A", "expoId": "1", "active": true, "lastSeen": day(0)},
				{"id": "2", "name": "Planet corner", "location": "Hall A", "expoId": "1", "active": true, "lastSeen": day(0)},
				{"id": "3", "name": "Reef tablet", "location": "Pavilion", "expoId": "2", "active": false},
			},
			domain.ResourceQuizzes: {
				{"id": "1", "title": "Solar system", "expoId": "1", "active": true},
				{"id": "2", "title": "Everyday physics", "expoId": "1", "active": true},
				{"id": "3", "title": "Deep sea", "expoId": "2", "active": false},
			},
			domain.ResourceQuestions: {
				{"id": "1", "quizId": "1", "position": 1, "text": "Which planet is closest to the sun?", "answer": "Mercury", "points": 2},
				{"id": "2", "quizId": "1", "position": 2, "text": "How many moons does Mars have?", "answer": "2", "points": 3},
				{"id": "3", "quizId": "2", "position": 1, "text": "At what temperature does water boil at sea level?", "answer": "100 °C", "points": 2},
				{"id": "4", "quizId": "3", "position": 1, "text": "What is the deepest known ocean trench?", "answer": "Mariana Trench", "points": 5},
			},
			domain.ResourcePlayers: {
				{"id": "1", "name": "Ada", "email": "ada@example.com", "createdAt": day(-6)},
				{"id": "2", "name": "Grace", "createdAt": day(-5)},
				{"id": "3", "name": "Linus", "email": "linus@example.com", "createdAt": day(-2)},
				{"id": "4", "name": "Margaret", "createdAt": day(-1)},
			},
			domain.ResourceUsers: {
				{"id": "1", "email": demoEmail, "role": "admin", "active": true},
				{"id": "2", "email": "staff@expo-admin.local", "role": "staff", "active": true},
				{"id": "3", "email": "former@expo-admin.local", "role": "staff", "active": false},
			},
		},
	}

	// A deterministic spread of results over the past week.
	for i := 0; i < 60; i++ {
		at := now.Add(-time.Duration(i*167) * time.Minute)
		seed.Results = append(seed.Results, domain.QuizResult{
			ID:         strconv.Itoa(i + 1),
			QuizID:     demoQuizzes[i%len(demoQuizzes)],
			PlayerID:   demoPlayers[(i*7)%len(demoPlayers)],
			Score:      (i * 3) % (demoMaxScore + 1),
			MaxScore:   demoMaxScore,
			FinishedAt: at,
		})
	}
	return memory.NewResourceStore(seed)
}
