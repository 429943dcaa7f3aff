package models

import "time"

// UnknownProject is shown when a task references a project that is not loaded
const UnknownProject = "Unknown Project"

// StatusCounts returns the number of tasks in each status
func StatusCounts(tasks []Task) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// DueSoon returns tasks due in [now, now+window), keeping list order.
// Tasks without a due date are skipped.
func DueSoon(tasks []Task, now time.Time, window time.Duration) []Task {
	end := now.Add(window)
	var out []Task
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := t.DueDate.Time
		if !due.Before(now) && due.Before(end) {
			out = append(out, t)
		}
	}
	return out
}

// RecentProjects returns the first n projects in the order the backend listed them
func RecentProjects(projects []Project, n int) []Project {
	if len(projects) <= n {
		return projects
	}
	return projects[:n]
}

// ProjectName resolves a project name, falling back to UnknownProject
func ProjectName(projects []Project, id int64) string {
	for _, p := range projects {
		if p.ID == id {
			return p.Name
		}
	}
	return UnknownProject
}

// GroupByStatus buckets tasks by status in workflow order, keeping list order within each bucket
func GroupByStatus(tasks []Task) map[Status][]Task {
	groups := make(map[Status][]Task, len(Statuses))
	for _, t := range tasks {
		groups[t.Status] = append(groups[t.Status], t)
	}
	return groups
}
