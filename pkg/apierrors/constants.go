package apierrors

const (
	MsgInvalidTaskID      = "invalidTaskID"
	MsgInvalidMemberID    = "invalidMemberID"
	MsgInvalidTaskPayload = "invalidTaskPayload"
	MsgInvalidYear        = "invalidYear"
	MsgTaskNotFound       = "taskNotFound"
	MsgCategoryNotFound   = "categoryNotFound"
	MsgMemberNotFound     = "memberNotFound"
	MsgLicenceNotFound    = "licenceNotFound"
	MsgUnauthenticated    = "unauthenticated"
	MsgForbidden          = "forbidden"
	MsgFailListTask       = "errorListTask"
	MsgFailGetTask        = "failGetTask"
	MsgFailCreateTask     = "failCreateTask"
	MsgFailUpdateTask     = "failUpdateTask"
	MsgFailSignUp         = "failSignUp"
	MsgFailRemoveSignup   = "failRemoveSignup"
	MsgFailMarkAsDone     = "failMarkAsDone"
	MsgFailValidateTask   = "failValidateTask"
	MsgFailListCategories = "failListCategories"
	MsgFailAuthenticate   = "failAuthenticate"
)
