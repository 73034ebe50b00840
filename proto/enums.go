package proto

import "strconv"

// NullValue is the single member of the null case of Value.
type NullValue int32

const NullValue_NULL_VALUE NullValue = 0

func (x NullValue) IsValid() bool { return x == NullValue_NULL_VALUE }
func (x NullValue) String() string { return enumString(x, NullValue_name) }

type NodeCategory int32

const (
	NodeCategory_CATEGORY_UNSPECIFIED NodeCategory = 0
	NodeCategory_CATEGORY_TRIGGER     NodeCategory = 1
	NodeCategory_CATEGORY_ACTION      NodeCategory = 2
	NodeCategory_CATEGORY_CONDITION   NodeCategory = 3
	NodeCategory_CATEGORY_TRANSFORM   NodeCategory = 4
	NodeCategory_CATEGORY_INTEGRATION NodeCategory = 5
	NodeCategory_CATEGORY_UTILITY     NodeCategory = 6
	NodeCategory_CATEGORY_AI          NodeCategory = 7
	NodeCategory_CATEGORY_MEDIA       NodeCategory = 8
)

func (x NodeCategory) IsValid() bool  { _, ok := NodeCategory_name[int32(x)]; return ok }
func (x NodeCategory) String() string { return enumString(x, NodeCategory_name) }

type NodeType int32

const (
	NodeType_NODE_TYPE_UNSPECIFIED NodeType = 0
	NodeType_NODE_TYPE_TRIGGER     NodeType = 1
	NodeType_NODE_TYPE_PROCESSOR   NodeType = 2
	NodeType_NODE_TYPE_BRANCH      NodeType = 3
	NodeType_NODE_TYPE_MERGE       NodeType = 4
	NodeType_NODE_TYPE_SUBFLOW     NodeType = 5
)

func (x NodeType) IsValid() bool  { _, ok := NodeType_name[int32(x)]; return ok }
func (x NodeType) String() string { return enumString(x, NodeType_name) }

type ParameterType int32

const (
	ParameterType_PARAM_TYPE_UNSPECIFIED ParameterType = 0
	ParameterType_PARAM_TYPE_STRING      ParameterType = 1
	ParameterType_PARAM_TYPE_INT         ParameterType = 2
	ParameterType_PARAM_TYPE_FLOAT       ParameterType = 3
	ParameterType_PARAM_TYPE_BOOL        ParameterType = 4
	ParameterType_PARAM_TYPE_BYTES       ParameterType = 5
	ParameterType_PARAM_TYPE_ARRAY       ParameterType = 6
	ParameterType_PARAM_TYPE_OBJECT      ParameterType = 7
	ParameterType_PARAM_TYPE_ENUM        ParameterType = 8
	ParameterType_PARAM_TYPE_SECRET      ParameterType = 9
	ParameterType_PARAM_TYPE_EXPRESSION  ParameterType = 10
	ParameterType_PARAM_TYPE_CODE        ParameterType = 11
	ParameterType_PARAM_TYPE_JSON        ParameterType = 12
)

func (x ParameterType) IsValid() bool  { _, ok := ParameterType_name[int32(x)]; return ok }
func (x ParameterType) String() string { return enumString(x, ParameterType_name) }

type UIType int32

const (
	UIType_UI_TYPE_UNSPECIFIED UIType = 0
	UIType_UI_TYPE_TEXT        UIType = 1
	UIType_UI_TYPE_TEXTAREA    UIType = 2
	UIType_UI_TYPE_NUMBER      UIType = 3
	UIType_UI_TYPE_SWITCH      UIType = 4
	UIType_UI_TYPE_SELECT      UIType = 5
	UIType_UI_TYPE_CODE        UIType = 6
	UIType_UI_TYPE_JSON        UIType = 7
	UIType_UI_TYPE_PASSWORD    UIType = 8
	UIType_UI_TYPE_FILE        UIType = 9
)

func (x UIType) IsValid() bool  { _, ok := UIType_name[int32(x)]; return ok }
func (x UIType) String() string { return enumString(x, UIType_name) }

type ResponseType int32

const (
	ResponseType_RESPONSE_TYPE_UNSPECIFIED ResponseType = 0
	ResponseType_RESPONSE_TYPE_LOG         ResponseType = 1
	ResponseType_RESPONSE_TYPE_PROGRESS    ResponseType = 2
	ResponseType_RESPONSE_TYPE_RESULT      ResponseType = 3
)

func (x ResponseType) IsValid() bool  { _, ok := ResponseType_name[int32(x)]; return ok }
func (x ResponseType) String() string { return enumString(x, ResponseType_name) }

type LogLevel int32

const (
	LogLevel_LOG_LEVEL_UNSPECIFIED LogLevel = 0
	LogLevel_LOG_LEVEL_DEBUG       LogLevel = 1
	LogLevel_LOG_LEVEL_INFO        LogLevel = 2
	LogLevel_LOG_LEVEL_WARN        LogLevel = 3
	LogLevel_LOG_LEVEL_ERROR       LogLevel = 4
)

func (x LogLevel) IsValid() bool  { _, ok := LogLevel_name[int32(x)]; return ok }
func (x LogLevel) String() string { return enumString(x, LogLevel_name) }

type ExecutionStatus int32

const (
	ExecutionStatus_EXECUTION_STATUS_UNSPECIFIED ExecutionStatus = 0
	ExecutionStatus_EXECUTION_STATUS_SUCCESS     ExecutionStatus = 1
	ExecutionStatus_EXECUTION_STATUS_FAILED      ExecutionStatus = 2
	ExecutionStatus_EXECUTION_STATUS_STOPPED     ExecutionStatus = 3
	ExecutionStatus_EXECUTION_STATUS_SKIPPED     ExecutionStatus = 4
)

func (x ExecutionStatus) IsValid() bool  { _, ok := ExecutionStatus_name[int32(x)]; return ok }
func (x ExecutionStatus) String() string { return enumString(x, ExecutionStatus_name) }

type StopStatus int32

const (
	StopStatus_STOP_STATUS_UNSPECIFIED StopStatus = 0
	StopStatus_STOP_STATUS_STOPPED     StopStatus = 1
	StopStatus_STOP_STATUS_NOT_RUNNING StopStatus = 2
	StopStatus_STOP_STATUS_ERROR       StopStatus = 3
)

func (x StopStatus) IsValid() bool  { _, ok := StopStatus_name[int32(x)]; return ok }
func (x StopStatus) String() string { return enumString(x, StopStatus_name) }

type HealthStatus int32

const (
	HealthStatus_HEALTH_STATUS_UNSPECIFIED HealthStatus = 0
	HealthStatus_HEALTH_STATUS_HEALTHY     HealthStatus = 1
	HealthStatus_HEALTH_STATUS_DEGRADED    HealthStatus = 2
	HealthStatus_HEALTH_STATUS_UNHEALTHY   HealthStatus = 3
)

func (x HealthStatus) IsValid() bool  { _, ok := HealthStatus_name[int32(x)]; return ok }
func (x HealthStatus) String() string { return enumString(x, HealthStatus_name) }

var (
	NullValue_name = map[int32]string{0: "NULL_VALUE"}

	NodeCategory_name = map[int32]string{
		0: "CATEGORY_UNSPECIFIED",
		1: "CATEGORY_TRIGGER",
		2: "CATEGORY_ACTION",
		3: "CATEGORY_CONDITION",
		4: "CATEGORY_TRANSFORM",
		5: "CATEGORY_INTEGRATION",
		6: "CATEGORY_UTILITY",
		7: "CATEGORY_AI",
		8: "CATEGORY_MEDIA",
	}
	NodeType_name = map[int32]string{
		0: "NODE_TYPE_UNSPECIFIED",
		1: "NODE_TYPE_TRIGGER",
		2: "NODE_TYPE_PROCESSOR",
		3: "NODE_TYPE_BRANCH",
		4: "NODE_TYPE_MERGE",
		5: "NODE_TYPE_SUBFLOW",
	}
	ParameterType_name = map[int32]string{
		0:  "PARAM_TYPE_UNSPECIFIED",
		1:  "PARAM_TYPE_STRING",
		2:  "PARAM_TYPE_INT",
		3:  "PARAM_TYPE_FLOAT",
		4:  "PARAM_TYPE_BOOL",
		5:  "PARAM_TYPE_BYTES",
		6:  "PARAM_TYPE_ARRAY",
		7:  "PARAM_TYPE_OBJECT",
		8:  "PARAM_TYPE_ENUM",
		9:  "PARAM_TYPE_SECRET",
		10: "PARAM_TYPE_EXPRESSION",
		11: "PARAM_TYPE_CODE",
		12: "PARAM_TYPE_JSON",
	}
	UIType_name = map[int32]string{
		0: "UI_TYPE_UNSPECIFIED",
		1: "UI_TYPE_TEXT",
		2: "UI_TYPE_TEXTAREA",
		3: "UI_TYPE_NUMBER",
		4: "UI_TYPE_SWITCH",
		5: "UI_TYPE_SELECT",
		6: "UI_TYPE_CODE",
		7: "UI_TYPE_JSON",
		8: "UI_TYPE_PASSWORD",
		9: "UI_TYPE_FILE",
	}
	ResponseType_name = map[int32]string{
		0: "RESPONSE_TYPE_UNSPECIFIED",
		1: "RESPONSE_TYPE_LOG",
		2: "RESPONSE_TYPE_PROGRESS",
		3: "RESPONSE_TYPE_RESULT",
	}
	LogLevel_name = map[int32]string{
		0: "LOG_LEVEL_UNSPECIFIED",
		1: "LOG_LEVEL_DEBUG",
		2: "LOG_LEVEL_INFO",
		3: "LOG_LEVEL_WARN",
		4: "LOG_LEVEL_ERROR",
	}
	ExecutionStatus_name = map[int32]string{
		0: "EXECUTION_STATUS_UNSPECIFIED",
		1: "EXECUTION_STATUS_SUCCESS",
		2: "EXECUTION_STATUS_FAILED",
		3: "EXECUTION_STATUS_STOPPED",
		4: "EXECUTION_STATUS_SKIPPED",
	}
	StopStatus_name = map[int32]string{
		0: "STOP_STATUS_UNSPECIFIED",
		1: "STOP_STATUS_STOPPED",
		2: "STOP_STATUS_NOT_RUNNING",
		3: "STOP_STATUS_ERROR",
	}
	HealthStatus_name = map[int32]string{
		0: "HEALTH_STATUS_UNSPECIFIED",
		1: "HEALTH_STATUS_HEALTHY",
		2: "HEALTH_STATUS_DEGRADED",
		3: "HEALTH_STATUS_UNHEALTHY",
	}
)

func enumString[E ~int32](x E, names map[int32]string) string {
	if s, ok := names[int32(x)]; ok {
		return s
	}
	return strconv.Itoa(int(x))
}
