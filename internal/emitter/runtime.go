package emitter

// RuntimeHeader is the small `vexrt.hpp` shim every emitted class
// includes: a generic Object value (any scalar, or a shared array) plus
// the array and print/println helpers the emitted C++ calls by name.
// It is written once per build directory, not per class.
const RuntimeHeader = `#ifndef VEXRT_HPP
#define VEXRT_HPP

#include <any>
#include <cstdint>
#include <iostream>
#include <memory>
#include <stdexcept>
#include <vector>

namespace vexrt {

using Object = std::any;
using Array = std::shared_ptr<std::vector<Object>>;

inline Object make_array(int32_t n) {
    return Object(Array(std::make_shared<std::vector<Object>>(static_cast<size_t>(n))));
}

inline Array as_array(const Object& v) {
    return std::any_cast<Array>(v);
}

inline Object array_get(const Object& arr, int32_t index) {
    auto a = as_array(arr);
    if (index < 0 || static_cast<size_t>(index) >= a->size()) {
        throw std::out_of_range("vexrt: array index out of range");
    }
    return (*a)[static_cast<size_t>(index)];
}

inline void array_set(const Object& arr, int32_t index, Object value) {
    auto a = as_array(arr);
    if (index < 0 || static_cast<size_t>(index) >= a->size()) {
        throw std::out_of_range("vexrt: array index out of range");
    }
    (*a)[static_cast<size_t>(index)] = std::move(value);
}

inline int32_t array_length(const Object& arr) {
    return static_cast<int32_t>(as_array(arr)->size());
}

inline void print(const Object& v) {
    if (!v.has_value()) { std::cout << "null"; }
    else if (auto p = std::any_cast<bool>(&v)) { std::cout << (*p ? "true" : "false"); }
    else if (auto p = std::any_cast<int8_t>(&v)) { std::cout << static_cast<int>(*p); }
    else if (auto p = std::any_cast<int32_t>(&v)) { std::cout << *p; }
    else if (auto p = std::any_cast<int64_t>(&v)) { std::cout << *p; }
    else if (auto p = std::any_cast<float>(&v)) { std::cout << *p; }
    else if (auto p = std::any_cast<double>(&v)) { std::cout << *p; }
    else { std::cout << "<object>"; }
}

inline void println(const Object& v) {
    print(v);
    std::cout << "\n";
}

} // namespace vexrt

#endif // VEXRT_HPP
`
