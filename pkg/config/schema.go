// The config file schema is the `chain.Config` protobuf message. It's described here with descriptorpb, so the config
// package doesn't need generated code; every leaf field is named after the command line flag it sets.
//
//	server { address: ":6381" metrics_address: ":9090" }
//	store { list_kind: "singly" store_shard_count: 8 }
//	log { log_handler_type: "text" log_level: "debug" }

package config

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// configDescriptor is the descriptor of the `chain.Config` message.
var configDescriptor = mustBuildConfigDescriptor()

func scalarField(name string, number int32, kind descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		JsonName: proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     kind.Enum(),
	}
}

func messageField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	field := scalarField(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	field.TypeName = proto.String(typeName)
	return field
}

func mustBuildConfigDescriptor() protoreflect.MessageDescriptor {
	const (
		stringType = descriptorpb.FieldDescriptorProto_TYPE_STRING
		int32Type  = descriptorpb.FieldDescriptorProto_TYPE_INT32
	)
	file := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("chain/config.proto"),
		Package: proto.String("chain"),
		Syntax:  proto.String("proto2"), // Explicit presence, so zero values in the file are still applied.
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Config"),
				Field: []*descriptorpb.FieldDescriptorProto{
					messageField("server", 1, ".chain.ServerConfig"),
					messageField("store", 2, ".chain.StoreConfig"),
					messageField("log", 3, ".chain.LogConfig"),
				},
			},
			{
				Name: proto.String("ServerConfig"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalarField("address", 1, stringType),
					scalarField("metrics_address", 2, stringType),
				},
			},
			{
				Name: proto.String("StoreConfig"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalarField("list_kind", 1, stringType),
					scalarField("store_shard_count", 2, int32Type),
				},
			},
			{
				Name: proto.String("LogConfig"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalarField("log_handler_type", 1, stringType),
					scalarField("log_level", 2, stringType),
				},
			},
		},
	}
	fd, err := protodesc.NewFile(file, protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("invalid config schema: %v", err))
	}
	return fd.Messages().ByName("Config")
}

// newConfigMessage returns an empty, mutable `chain.Config` message.
func newConfigMessage() *dynamicpb.Message {
	return dynamicpb.NewMessage(configDescriptor)
}
