package wbs

// UpdateTaskByID returns a forest in which the task with the given id has
// been replaced by updater(task). The search is depth-first pre-order over
// the whole forest. If no task matches, the input forest is returned as is.
//
// Only the child slices on the path to the match are copied; every other
// subtree keeps sharing its backing array with the input.
func UpdateTaskByID(forest []Task, id string, updater func(Task) Task) []Task {
	out, _ := updateIn(forest, id, updater)
	return out
}

func updateIn(tasks []Task, id string, updater func(Task) Task) ([]Task, bool) {
	for i, t := range tasks {
		var replaced Task
		if t.ID == id {
			replaced = updater(t)
		} else {
			children, found := updateIn(t.Children, id, updater)
			if !found {
				continue
			}
			replaced = t
			replaced.Children = children
		}
		out := make([]Task, len(tasks))
		copy(out, tasks)
		out[i] = replaced
		return out, true
	}
	return tasks, false
}

func FindTaskByID(forest []Task, id string) (Task, bool) {
	for _, t := range forest {
		if t.ID == id {
			return t, true
		}
		if found, ok := FindTaskByID(t.Children, id); ok {
			return found, true
		}
	}
	return Task{}, false
}

func ToggleExpanded(forest []Task, id string) []Task {
	return UpdateTaskByID(forest, id, func(t Task) Task {
		t.Expanded = !t.Expanded
		return t
	})
}

// AddTask appends task as the last child of parentID, or as a new root when
// parentID is empty. The task's Level is derived from its parent. ok is false
// when parentID names no task.
func AddTask(forest []Task, parentID string, task Task) ([]Task, bool) {
	if parentID == "" {
		task = relevel(task, 0)
		out := make([]Task, len(forest), len(forest)+1)
		copy(out, forest)
		return append(out, task), true
	}
	added := false
	out := UpdateTaskByID(forest, parentID, func(parent Task) Task {
		added = true
		children := make([]Task, len(parent.Children), len(parent.Children)+1)
		copy(children, parent.Children)
		parent.Children = append(children, relevel(task, parent.Level+1))
		return parent
	})
	return out, added
}

// RemoveTaskByID drops the task and its whole subtree. Dependencies on the
// removed ids are left in place; they dangle and are skipped when edges are
// resolved.
func RemoveTaskByID(forest []Task, id string) ([]Task, bool) {
	for i, t := range forest {
		if t.ID == id {
			out := make([]Task, 0, len(forest)-1)
			out = append(out, forest[:i]...)
			return append(out, forest[i+1:]...), true
		}
		children, removed := RemoveTaskByID(t.Children, id)
		if !removed {
			continue
		}
		t.Children = children
		out := make([]Task, len(forest))
		copy(out, forest)
		out[i] = t
		return out, true
	}
	return forest, false
}

// Relevel recomputes the advisory Level of every task from its depth.
func Relevel(forest []Task) []Task {
	out := make([]Task, len(forest))
	for i, t := range forest {
		out[i] = relevel(t, 0)
	}
	return out
}

func relevel(t Task, level int) Task {
	t.Level = level
	if len(t.Children) == 0 {
		return t
	}
	children := make([]Task, len(t.Children))
	for i, c := range t.Children {
		children[i] = relevel(c, level+1)
	}
	t.Children = children
	return t
}

// Walk visits every task in depth-first pre-order until fn returns false.
func Walk(forest []Task, fn func(t Task, depth int) bool) {
	walk(forest, 0, fn)
}

func walk(tasks []Task, depth int, fn func(Task, int) bool) bool {
	for _, t := range tasks {
		if !fn(t, depth) {
			return false
		}
		if !walk(t.Children, depth+1, fn) {
			return false
		}
	}
	return true
}
