package rbac

const (
	PermQuizView        = "quiz:view"
	PermQuizViewAnswers = "quiz:view-answers"

	PermProgressAssign  = "progress:assign"
	PermProgressViewAll = "progress:view-all"
	PermProgressViewOwn = "progress:view-own"
	PermProgressSubmit  = "progress:submit"
	PermProgressReset   = "progress:reset"
	PermProgressGrade   = "progress:grade"
	PermProgressDelete  = "progress:delete"
)

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	"student": {
		PermQuizView,
		PermProgressViewOwn,
		PermProgressSubmit,
	},
	"tutor": {
		PermQuizView,
		PermQuizViewAnswers,
		PermProgressAssign,
		PermProgressViewAll,
		PermProgressReset,
		PermProgressGrade,
		PermProgressSubmit,
	},
	"admin": {
		"*", // everything
	},
}
