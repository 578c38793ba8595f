package wbs

// SampleForest returns a small system development plan starting on the
// default window start. It is used for seeding and by the CLI.
func SampleForest() []Task {
	return Relevel([]Task{
		{
			ID: "1", Name: "New system development", Assignee: "Tanaka",
			StartDate: "2025-01-01", EndDate: "2025-03-31", Duration: 90,
			Priority: PriorityHigh, Status: StatusInProgress, Expanded: true,
			Children: []Task{
				{
					ID: "1.1", Name: "Requirements phase", Assignee: "Yamada",
					StartDate: "2025-01-01", EndDate: "2025-01-20", Duration: 20,
					Priority: PriorityHigh, Status: StatusCompleted, Expanded: true,
					Children: []Task{
						{ID: "1.1.1", Name: "Stakeholder interviews", Assignee: "Tanaka", Progress: 100, StartDate: "2025-01-01", EndDate: "2025-01-10", Duration: 10, EstimatedHours: 40, ActualHours: 38, Status: StatusCompleted},
						{ID: "1.1.2", Name: "Requirements document", Assignee: "Yamada", Progress: 100, StartDate: "2025-01-11", EndDate: "2025-01-20", Duration: 10, EstimatedHours: 60, ActualHours: 64, Status: StatusCompleted, Dependencies: []string{"1.1.1"}},
					},
				},
				{
					ID: "1.2", Name: "Design phase", Assignee: "Sato",
					StartDate: "2025-01-21", EndDate: "2025-02-20", Duration: 30,
					Priority: PriorityHigh, Status: StatusInProgress, Expanded: true,
					Dependencies: []string{"1.1"},
					Children: []Task{
						{ID: "1.2.1", Name: "Basic design", Assignee: "Sato", Progress: 80, StartDate: "2025-01-21", EndDate: "2025-02-05", Duration: 15, EstimatedHours: 80, ActualHours: 70, Status: StatusInProgress},
						{ID: "1.2.2", Name: "Detailed design", Assignee: "Suzuki", Progress: 40, StartDate: "2025-02-06", EndDate: "2025-02-20", Duration: 15, EstimatedHours: 120, ActualHours: 50, Status: StatusInProgress, Dependencies: []string{"1.2.1"}},
					},
				},
				{
					ID: "1.3", Name: "Development phase", Assignee: "Tanaka",
					StartDate: "2025-02-21", EndDate: "2025-03-31", Duration: 38,
					Priority: PriorityMedium, Status: StatusInProgress, Expanded: true,
					Dependencies: []string{"1.2"},
					Children: []Task{
						{ID: "1.3.1", Name: "Frontend development", Assignee: "Tanaka", Progress: 30, StartDate: "2025-02-21", EndDate: "2025-03-15", Duration: 22, Status: StatusInProgress},
						{ID: "1.3.2", Name: "Backend development", Assignee: "Yamada", Progress: 15, StartDate: "2025-02-21", EndDate: "2025-03-20", Duration: 27, Status: StatusInProgress},
						{ID: "1.3.3", Name: "Testing", Assignee: "Sato", StartDate: "2025-03-21", EndDate: "2025-03-31", Duration: 10, Status: StatusNotStarted, Dependencies: []string{"1.3.1", "1.3.2"}},
					},
				},
				{
					ID: "1.4", Name: "Release", Assignee: "Tanaka",
					StartDate: "2025-03-31", EndDate: "2025-03-31", IsMilestone: true,
					Priority: PriorityHigh, Status: StatusNotStarted,
					Dependencies: []string{"1.3"},
				},
			},
		},
	})
}
