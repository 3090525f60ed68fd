package native

import "reflect"

func typeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }

func typeOfValue(v any) reflect.Type { return reflect.TypeOf(v) }
